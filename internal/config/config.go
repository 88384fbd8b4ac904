package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvAIAPIKey     = "AI_API_KEY"
	EnvRedisAddr    = "REDIS_ADDR"
)

// AppConfig holds resolved application configuration values.
type AppConfig struct {
	ConfigPath string
}

// LoadFromEnv loads app config from environment variables.
func LoadFromEnv() (AppConfig, error) {
	return AppConfig{ConfigPath: ResolveConfigPath(os.Getenv(EnvConfigPath))}, nil
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// ErrMissingDatabaseDSN indicates no database DSN is present in the config file.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database-dsn` or `database.dsn` in config file)")

// JWTConfig holds JWT secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// LoadDatabaseDSN reads the database DSN from the YAML config file.
func LoadDatabaseDSN(configPath string) (string, error) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		return dsn, nil
	}

	// fileConfig maps the YAML fields needed for DSN resolution.
	type fileConfig struct {
		DatabaseDSN string `yaml:"database-dsn"`
		Database    struct {
			DSN string `yaml:"dsn"`
		} `yaml:"database"`
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", fmt.Errorf("read config file: %w", err)
	}

	var cfg fileConfig
	if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return "", fmt.Errorf("parse config file: %w", errUnmarshal)
	}

	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn, nil
	}
	if dsn := strings.TrimSpace(cfg.Database.DSN); dsn != "" {
		return dsn, nil
	}
	return "", ErrMissingDatabaseDSN
}

// defaultJWTExpiry is used when the config omits or invalidates JWT expiry.
const defaultJWTExpiry = 30 * 24 * time.Hour

// LoadJWTConfig loads JWT settings from the YAML config file.
func LoadJWTConfig(configPath string) (JWTConfig, error) {
	// fileConfig maps the YAML fields needed for JWT settings.
	type fileConfig struct {
		JWT JWTConfig `yaml:"jwt"`
	}

	result := JWTConfig{Expiry: defaultJWTExpiry}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		var cfg fileConfig
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal == nil {
			result = cfg.JWT
		}
	}

	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		result.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			result.Expiry = expiry
		}
	}

	if result.Expiry <= 0 {
		result.Expiry = defaultJWTExpiry
	}
	return result, nil
}

// Defaults for the optional config sections.
const (
	DefaultPort              = 8318
	DefaultAIBaseURL         = "https://generativelanguage.googleapis.com/v1beta"
	DefaultAIModel           = "gemini-1.5-flash"
	DefaultAITimeout         = 30 * time.Second
	DefaultQuranBaseURL      = "https://api.alquran.cloud/v1"
	DefaultHadithBaseURL     = "https://api.hadith.gading.dev"
	DefaultReferenceTimeout  = 15 * time.Second
	DefaultReferenceCacheTTL = 24 * time.Hour
	DefaultRedisPrefix       = "syariahos"
	DefaultTaskResetInterval = time.Hour
	DefaultAIRateLimit       = 2
	DefaultLoginRateLimit    = 5
	DefaultLogDir            = "logs"
)

// AIConfig configures the generative AI provider.
type AIConfig struct {
	BaseURL string        `yaml:"base-url"`
	APIKey  string        `yaml:"api-key"`
	Model   string        `yaml:"model"`
	Timeout time.Duration `yaml:"timeout"`
}

// ReferenceConfig configures the Quran and Hadith upstream APIs.
type ReferenceConfig struct {
	QuranBaseURL  string        `yaml:"quran-base-url"`
	HadithBaseURL string        `yaml:"hadith-base-url"`
	CacheTTL      time.Duration `yaml:"cache-ttl"`
	Timeout       time.Duration `yaml:"timeout"`
}

// RedisConfig configures the optional shared Redis instance.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// RateLimitConfig holds request limits; zero disables a limit.
type RateLimitConfig struct {
	AI    int `yaml:"ai"`    // AI requests per user per second.
	Login int `yaml:"login"` // Login, register and setup attempts per client IP per minute.
}

// TaskResetConfig controls the in-process reset scheduler.
type TaskResetConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// BootstrapAdminConfig seeds an admin account at start-up when none exists.
type BootstrapAdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed-origins"`
}

// ServerConfig is the full runtime configuration of the API server.
type ServerConfig struct {
	Host           string               `yaml:"host"`
	Port           int                  `yaml:"port"`
	Debug          bool                 `yaml:"debug"`
	LoggingToFile  bool                 `yaml:"logging-to-file"`
	LogDir         string               `yaml:"log-dir"`
	AI             AIConfig             `yaml:"ai"`
	Reference      ReferenceConfig      `yaml:"reference"`
	Redis          RedisConfig          `yaml:"redis"`
	RateLimit      RateLimitConfig      `yaml:"rate-limit"`
	TaskReset      TaskResetConfig      `yaml:"task-reset"`
	BootstrapAdmin BootstrapAdminConfig `yaml:"bootstrap-admin"`
	CORS           CORSConfig           `yaml:"cors"`
}

// LoadServerConfig reads the server sections of the config file and applies
// defaults and environment overrides. A missing file yields the defaults.
func LoadServerConfig(configPath string) (ServerConfig, error) {
	cfg := ServerConfig{
		Port: DefaultPort,
		RateLimit: RateLimitConfig{
			AI:    DefaultAIRateLimit,
			Login: DefaultLoginRateLimit,
		},
		TaskReset: TaskResetConfig{Interval: DefaultTaskResetInterval},
	}

	data, errRead := os.ReadFile(configPath)
	if errRead != nil && !errors.Is(errRead, os.ErrNotExist) {
		return ServerConfig{}, fmt.Errorf("read config file: %w", errRead)
	}
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return ServerConfig{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	}

	if key := strings.TrimSpace(os.Getenv(EnvAIAPIKey)); key != "" {
		cfg.AI.APIKey = key
	}
	if addr := strings.TrimSpace(os.Getenv(EnvRedisAddr)); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}

	applyServerDefaults(&cfg)
	return cfg, nil
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port <= 0 {
		cfg.Port = DefaultPort
	}
	if strings.TrimSpace(cfg.LogDir) == "" {
		cfg.LogDir = DefaultLogDir
	}
	cfg.AI.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.AI.BaseURL), "/")
	if cfg.AI.BaseURL == "" {
		cfg.AI.BaseURL = DefaultAIBaseURL
	}
	if strings.TrimSpace(cfg.AI.Model) == "" {
		cfg.AI.Model = DefaultAIModel
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = DefaultAITimeout
	}
	cfg.Reference.QuranBaseURL = strings.TrimRight(strings.TrimSpace(cfg.Reference.QuranBaseURL), "/")
	if cfg.Reference.QuranBaseURL == "" {
		cfg.Reference.QuranBaseURL = DefaultQuranBaseURL
	}
	cfg.Reference.HadithBaseURL = strings.TrimRight(strings.TrimSpace(cfg.Reference.HadithBaseURL), "/")
	if cfg.Reference.HadithBaseURL == "" {
		cfg.Reference.HadithBaseURL = DefaultHadithBaseURL
	}
	if cfg.Reference.CacheTTL <= 0 {
		cfg.Reference.CacheTTL = DefaultReferenceCacheTTL
	}
	if cfg.Reference.Timeout <= 0 {
		cfg.Reference.Timeout = DefaultReferenceTimeout
	}
	if strings.TrimSpace(cfg.Redis.Prefix) == "" {
		cfg.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.Redis.DB < 0 {
		cfg.Redis.DB = 0
	}
	if cfg.RateLimit.AI < 0 {
		cfg.RateLimit.AI = 0
	}
	if cfg.RateLimit.Login < 0 {
		cfg.RateLimit.Login = 0
	}
	if cfg.TaskReset.Interval < 0 {
		cfg.TaskReset.Interval = 0
	}
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return strings.TrimSpace(c.Host) + ":" + strconv.Itoa(c.Port)
}
