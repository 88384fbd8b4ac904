package app

import (
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/syariahos/syariahos-api/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ConfigureLogging sets the global logrus level, formatter and output. Log
// files live under cfg.LogDir, resolved against the config file directory.
// The returned closer flushes the rotating file, if any.
func ConfigureLogging(cfg config.ServerConfig, configPath string) io.Closer {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	if !cfg.LoggingToFile {
		log.SetOutput(os.Stdout)
		return io.NopCloser(nil)
	}

	dir := cfg.LogDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(configPath), dir)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "syariahos.log"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	}
	log.SetOutput(io.MultiWriter(os.Stdout, rotator))
	return rotator
}
