// Package log provides the process-wide leveled logger.
package log

import "sync"

// Logger is the logging interface used by every component. It hides the
// concrete backend so pipeline code never imports logrus directly.
type Logger interface {
	Trace(args ...interface{})
	Tracef(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	WithField(field string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
	WithError(err error) Logger

	IsDebugEnabled() bool
}

var (
	mu     sync.RWMutex
	logger Logger = mustBuild(defaultConfig())
)

// Init replaces the global logger according to cfg. Later calls swap the
// backend atomically, so components may cache the result of GetLogger only
// per call site, not per process.
func Init(cfg *Config) error {
	if cfg == nil {
		cfg = defaultConfig()
	}
	l, err := buildLogger(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

// GetLogger returns the global logger.
func GetLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func mustBuild(cfg *Config) Logger {
	l, err := buildLogger(cfg)
	if err != nil {
		panic(err)
	}
	return l
}
