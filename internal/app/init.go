package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/accounts"
	"github.com/syariahos/syariahos-api/internal/activity"
	"github.com/syariahos/syariahos-api/internal/config"
	"github.com/syariahos/syariahos-api/internal/db"
	"github.com/syariahos/syariahos-api/internal/models"
	"github.com/syariahos/syariahos-api/internal/security"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// ConfigExists reports whether the config file exists at the path.
func ConfigExists(configPath string) bool {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return false
	}
	return true
}

// configFile maps YAML fields for the generated config file.
type configFile struct {
	Host          string       `yaml:"host"`
	Port          int          `yaml:"port"`
	DatabaseDSN   string       `yaml:"database-dsn"`
	Debug         bool         `yaml:"debug"`
	LoggingToFile bool         `yaml:"logging-to-file"`
	JWT           jwtCfg       `yaml:"jwt"`
	TaskReset     taskResetCfg `yaml:"task-reset"`
}

// jwtCfg holds JWT settings for the generated config file.
type jwtCfg struct {
	Secret string `yaml:"secret"`
	Expiry string `yaml:"expiry"`
}

// taskResetCfg holds scheduler settings for the generated config file.
type taskResetCfg struct {
	Interval string `yaml:"interval"`
}

// generateJWTSecret creates a random JWT secret string.
func generateJWTSecret() (string, error) {
	secret, err := security.GenerateRandomString(32)
	if err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return secret, nil
}

// WriteConfigFile writes the initial config file to disk.
func WriteConfigFile(configPath string, dsn string, port int) error {
	secret, errSecret := generateJWTSecret()
	if errSecret != nil {
		return errSecret
	}
	cfg := configFile{
		Port:        port,
		DatabaseDSN: dsn,
		JWT: jwtCfg{
			Secret: secret,
			Expiry: "720h",
		},
		TaskReset: taskResetCfg{Interval: config.DefaultTaskResetInterval.String()},
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(configPath)
	if errMkdir := os.MkdirAll(dir, 0755); errMkdir != nil {
		return fmt.Errorf("create config dir: %w", errMkdir)
	}

	if errWrite := os.WriteFile(configPath, data, 0600); errWrite != nil {
		return fmt.Errorf("write config file: %w", errWrite)
	}

	return nil
}

// EnsureConfigFile writes a SQLite-backed config next to configPath when the
// file is missing and no DSN comes from the environment. It reports whether a
// file was written.
func EnsureConfigFile(configPath string, port int) (bool, error) {
	if ConfigExists(configPath) || strings.TrimSpace(os.Getenv(config.EnvDBConnection)) != "" {
		return false, nil
	}
	if port <= 0 {
		port = config.DefaultPort
	}
	dbPath := filepath.Join(filepath.Dir(configPath), db.DefaultSQLitePath)
	if errWrite := WriteConfigFile(configPath, db.BuildSQLiteDSN(dbPath), port); errWrite != nil {
		return false, errWrite
	}
	log.Infof("config not found, wrote defaults to %s", configPath)
	return true, nil
}

// BootstrapAdmin creates the configured admin when no admin exists yet.
func BootstrapAdmin(ctx context.Context, conn *gorm.DB, manager *accounts.Manager, cfg config.BootstrapAdminConfig) (bool, error) {
	if conn == nil || manager == nil {
		return false, errors.New("bootstrap admin: nil dependency")
	}
	email := strings.TrimSpace(cfg.Email)
	if email == "" || cfg.Password == "" {
		return false, nil
	}
	initialized, errCheck := accounts.HasAdmin(conn.WithContext(ctx))
	if errCheck != nil {
		return false, errCheck
	}
	if initialized {
		return false, nil
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "Administrator"
	}
	user, errCreate := manager.Create(ctx, activity.System, accounts.CreateInput{
		Name:     name,
		Email:    email,
		Password: cfg.Password,
		Role:     models.RoleAdmin,
	})
	if errCreate != nil {
		return false, fmt.Errorf("bootstrap admin: %w", errCreate)
	}
	log.WithField("user_id", user.ID).Info("bootstrap admin created")
	return true, nil
}
