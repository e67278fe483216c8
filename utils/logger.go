package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger provides leveled, printf-style logging throughout the application.
type Logger struct {
	base *logrus.Logger
	sink io.Closer
}

// NewLogger creates an info-level Logger writing to stdout.
func NewLogger() *Logger {
	return newLogger(os.Stdout, logrus.InfoLevel)
}

// NewLoggerWithOptions creates a Logger at the given level. When logFile is
// set, output is mirrored to a size-rotated file.
func NewLoggerWithOptions(level, logFile string) (*Logger, error) {
	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("logger: invalid level %q: %w", level, err)
		}
		lvl = parsed
	}

	if logFile == "" {
		return newLogger(os.Stdout, lvl), nil
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}

	l := newLogger(io.MultiWriter(os.Stdout, rotator), lvl)
	l.sink = rotator
	return l, nil
}

func newLogger(out io.Writer, lvl logrus.Level) *Logger {
	base := logrus.New()
	base.SetOutput(out)
	base.SetLevel(lvl)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return &Logger{base: base}
}

func (l *Logger) Info(format string, args ...any) {
	l.base.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.base.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.base.Errorf(format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	l.base.Debugf(format, args...)
}

// IsDebug reports whether debug messages are emitted.
func (l *Logger) IsDebug() bool {
	return l.base.IsLevelEnabled(logrus.DebugLevel)
}

// Close releases the rotating file sink, if any.
func (l *Logger) Close() error {
	if l.sink == nil {
		return nil
	}
	return l.sink.Close()
}
