package logger

import (
	"context"
	"fmt"
	multi "github.com/samber/slog-multi"
	"gopkg.in/natefinch/lumberjack.v2"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

type Logger interface {
	SetLogLevel(levelStr string)
	GetLogLevel() string

	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, err error, args ...any)
	Fatal(msg string, err error, args ...any)
}

// levels is ordered from most to least verbose.
var levels = []struct {
	name  string
	label string
	level slog.Level
}{
	{"trace", "TRACE", LevelTrace},
	{"debug", "DEBUG", slog.LevelDebug},
	{"info", "INFO", slog.LevelInfo},
	{"warn", "WARN", slog.LevelWarn},
	{"error", "ERROR", slog.LevelError},
	{"fatal", "FATAL", LevelFatal},
}

// ParseLevel maps a config level name to a slog level, falling back to info.
func ParseLevel(name string) slog.Level {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range levels {
		if l.name == name {
			return l.level
		}
	}
	return slog.LevelInfo
}

type Options struct {
	// File is the rotated JSON log; empty disables file output.
	File   string
	Stdout io.Writer
	Level  string
	// Exit is called by Fatal; defaults to os.Exit.
	Exit func(code int)
}

type SlogLogger struct {
	log   *slog.Logger
	level *slog.LevelVar
	exit  func(code int)
}

func New(o Options) *SlogLogger {
	l := &SlogLogger{level: &slog.LevelVar{}, exit: o.Exit}
	if l.exit == nil {
		l.exit = os.Exit
	}
	l.SetLogLevel(o.Level)

	opts := &slog.HandlerOptions{
		AddSource:   true,
		Level:       l.level,
		ReplaceAttr: replaceAttr,
	}

	stdout := o.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	handlers := []slog.Handler{slog.NewTextHandler(stdout, opts)}
	if o.File != "" {
		handlers = append(handlers, slog.NewJSONHandler(&lumberjack.Logger{
			Filename:   o.File,
			MaxSize:    16,
			MaxBackups: 8,
			MaxAge:     14,
			Compress:   true,
		}, opts))
	}

	l.log = slog.New(multi.Fanout(handlers...))
	return l
}

func replaceAttr(_ []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		level, ok := a.Value.Any().(slog.Level)
		if !ok {
			return a
		}
		a.Value = slog.StringValue(levelLabel(level))
	case slog.SourceKey:
		a.Value = slog.StringValue(callerOutsideLogger(10))
	}
	return a
}

func levelLabel(level slog.Level) string {
	for _, l := range levels {
		if l.level == level {
			return l.label
		}
	}
	return level.String()
}

func (l *SlogLogger) SetLogLevel(levelStr string) {
	l.level.Set(ParseLevel(levelStr))
}

func (l *SlogLogger) GetLogLevel() string {
	current := l.level.Level()
	for _, lv := range levels {
		if lv.level == current {
			return lv.name
		}
	}
	return "info"
}

func (l *SlogLogger) Trace(msg string, args ...any) {
	l.log.Log(context.Background(), LevelTrace, msg, args...)
}

func (l *SlogLogger) Debug(msg string, args ...any) {
	l.log.Debug(msg, args...)
}

func (l *SlogLogger) Info(msg string, args ...any) {
	l.log.Info(msg, args...)
}

func (l *SlogLogger) Warn(msg string, args ...any) {
	l.log.Warn(msg, args...)
}

func (l *SlogLogger) Error(msg string, err error, args ...any) {
	l.log.Error(msg, withErr(err, args)...)
}

func (l *SlogLogger) Fatal(msg string, err error, args ...any) {
	l.log.Log(context.Background(), LevelFatal, msg, withErr(err, args)...)
	l.exit(1)
}

func withErr(err error, args []any) []any {
	if err == nil {
		return args
	}
	return append([]any{slog.String("error", err.Error())}, args...)
}

func callerOutsideLogger(skip int) string {
	for i := skip; ; i++ {
		_, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		if !strings.Contains(file, "pkg/logger") && !strings.Contains(file, "log/slog") {
			return fmt.Sprintf("%s:%d", file, line)
		}
	}
	return "unknown"
}
