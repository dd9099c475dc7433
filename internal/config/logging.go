package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SetupLogging configures the standard logrus logger
func SetupLogging(c *Config) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	logrus.SetLevel(level)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return nil
}
