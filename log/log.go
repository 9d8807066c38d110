// Package log writes diagnostics of the engine and the CLI to a daily log file through logrus.
//
// Until Setup enables it, everything logged is discarded.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/playsync/playsync/filesystem"
	"github.com/playsync/playsync/key"
	"github.com/playsync/playsync/where"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var logger = newDiscarding()

func newDiscarding() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.PanicLevel)
	return l
}

// Setup opens today's log file under the logs directory and applies the configured format and level.
func Setup() error {
	if !viper.GetBool(key.LogsWrite) {
		return nil
	}

	path := filepath.Join(where.Logs(), time.Now().Format("2006-01-02")+".log")
	f, err := filesystem.API().OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	return configure(f, viper.GetBool(key.LogsJson), viper.GetString(key.LogsLevel))
}

func configure(out io.Writer, json bool, level string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}

	if json {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	}
	logger.SetOutput(out)
	logger.SetLevel(parsed)
	return nil
}

// Component returns an entry tagged with the name of the part of the system that logs through it.
func Component(name string) *logrus.Entry {
	return logger.WithField("component", name)
}

func Error(args ...any) { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Warn(args ...any) { logger.Warn(args...) }
func Warnf(format string, args ...any) { logger.Warnf(format, args...) }
func Info(args ...any) { logger.Info(args...) }
func Infof(format string, args ...any) { logger.Infof(format, args...) }
func Debug(args ...any) { logger.Debug(args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Trace(args ...any) { logger.Trace(args...) }
func Tracef(format string, args ...any) { logger.Tracef(format, args...) }
