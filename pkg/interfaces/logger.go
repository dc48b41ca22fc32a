package interfaces

import "context"

// Logger is the leveled logging contract used across the status updater.
// Its method set matches github.com/goliatone/go-logger, so hosts can hand in
// a go-logger instance as is.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out loggers by module name, e.g. "cms.resolver".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// LoggerProviderFunc adapts a function to LoggerProvider.
type LoggerProviderFunc func(name string) Logger

func (fn LoggerProviderFunc) GetLogger(name string) Logger {
	if fn == nil {
		return nil
	}
	return fn(name)
}

// FieldsLogger is implemented by loggers that can carry structured fields on
// every entry. logging.WithFields leaves other loggers untouched.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
