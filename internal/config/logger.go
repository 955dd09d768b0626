package config

import (
    "os"

    "github.com/sirupsen/logrus"
)

// NewLogger builds the application logger from LOG_LEVEL and LOG_FORMAT.
// Unknown levels fall back to info.
func NewLogger(cfg Config) *logrus.Logger {
    logger := logrus.New()
    logger.SetOutput(os.Stdout)
    level, err := logrus.ParseLevel(cfg.LogLevel)
    if err != nil {
        level = logrus.InfoLevel
    }
    logger.SetLevel(level)
    if cfg.LogFormat == "json" {
        logger.SetFormatter(&logrus.JSONFormatter{})
    } else {
        logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
    }
    return logger
}
