package logger

import (
	"os"

	"go-shop-manager/internal/config"

	"github.com/sirupsen/logrus"
)

var logg = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	l.SetOutput(os.Stdout)
	return l
}

// Setup applies the configured level and formatter to the shared logger.
func Setup(cfg config.LogConfig) *logrus.Logger {
	if lvl, err := logrus.ParseLevel(cfg.Level); err == nil {
		logg.SetLevel(lvl)
	} else {
		logg.WithField("level", cfg.Level).Warn("unknown log level, keeping info")
	}
	if cfg.Format == "text" {
		logg.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logg.SetFormatter(&logrus.JSONFormatter{})
	}
	return logg
}

func Get() *logrus.Logger {
	return logg
}

// For returns an entry tagged with the calling module.
func For(module string) *logrus.Entry {
	return logg.WithField("module", module)
}

func LogError(module string, funcName string, data any, err error) {
	fields := logrus.Fields{
		"module":   module,
		"funcName": funcName,
	}
	if data != nil {
		fields["data"] = data
	}
	logg.WithFields(fields).Error(err.Error())
}
