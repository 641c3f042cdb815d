package logger

import (
	"fmt"
	"log/slog"
)

// Logger is a small chaining wrapper around slog. Each call site names its
// package once and its function per operation, so log lines always carry
// "package" and "function" attributes without repeating them in messages.
type Logger struct {
	logger *slog.Logger
}

func New(packageName string) Logger {
	return Logger{
		logger: slog.Default().With("package", packageName),
	}
}

func (l Logger) Function(name string) Logger {
	return Logger{logger: l.logger.With("function", name)}
}

func (l Logger) File(name string) Logger {
	return Logger{logger: l.logger.With("file", name)}
}

func (l Logger) With(args ...any) Logger {
	return Logger{logger: l.logger.With(args...)}
}

func (l Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

// Er logs an error without returning one, for paths that handle the failure
// locally.
func (l Logger) Er(msg string, err error, args ...any) {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
}

func (l Logger) ErMsg(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Err logs and returns an error wrapping the cause, so call sites can do
// `return log.Err("failed to ...", err)` in one line.
func (l Logger) Err(msg string, err error, args ...any) error {
	l.logger.Error(msg, append([]any{"error", err}, args...)...)
	return fmt.Errorf("%s: %w", msg, err)
}

// Error logs and returns a new error built from the message.
func (l Logger) Error(msg string, args ...any) error {
	l.logger.Error(msg, args...)
	return fmt.Errorf("%s", msg)
}

func (l Logger) ErrMsg(msg string) error {
	l.logger.Error(msg)
	return fmt.Errorf("%s", msg)
}
