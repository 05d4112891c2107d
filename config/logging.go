package config

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

var Log = logrus.New()

// InitLogger switches Log to JSON output on stdout and a rotated file.
func InitLogger() {
	// Create log directory if not exists
	if err := os.MkdirAll("logs", 0o755); err != nil {
		Log.WithError(err).Warn("cannot create log directory, logging to stdout only")
		Log.SetOutput(os.Stdout)
	} else {
		// Tee stdout with a rotated log file (lumberjack)
		Log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   "logs/app.log",
			MaxSize:    10,   // Megabytes before log is rotated
			MaxBackups: 3,    // Number of old logs to keep
			MaxAge:     28,   // Maximum number of days to retain old log files
			Compress:   true, // Compress backups
		}))
	}

	// Log level from config (.env, config.yaml or environment)
	Log.SetLevel(ParseLevel(viper.GetString("LOG_LEVEL")))

	// Set log format to JSON
	Log.SetFormatter(&logrus.JSONFormatter{})

	Log.Info("logger initialized")
}

// ParseLevel maps a config string to a logrus level, defaulting to info.
func ParseLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	// Level names are matched case-insensitively
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel // Default log level is info
	}
}
