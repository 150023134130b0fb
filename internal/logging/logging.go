// Package logging builds the logrus logger shared by the lane tracker.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// StreamIDKey is the field carrying the id of the stream a log entry belongs to.
const StreamIDKey = "stream_id"

// Options configures the logger.
type Options struct {
	Level string `json:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	// File enables a rotated log file in addition to stderr.
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" validate:"gte=0"`
	MaxBackups int    `json:"max_backups,omitempty" validate:"gte=0"`
	MaxAgeDays int    `json:"max_age_days,omitempty" validate:"gte=0"`
	NoColors   bool   `json:"no_colors,omitempty"`
	Caller     bool   `json:"caller,omitempty"`
}

// DefaultOptions logs at info level to stderr only.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		MaxSizeMB:  100,
		MaxBackups: 3,
		MaxAgeDays: 7,
	}
}

// New creates a logger writing to stderr and, when opts.File is set, to a
// rotated file.
func New(opts Options) (*logrus.Logger, error) {
	return NewWithWriter(opts, os.Stderr)
}

// NewWithWriter is New with a custom console writer.
func NewWithWriter(opts Options, console io.Writer) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
		level = lvl
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{console}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    opts.MaxSizeMB,
			MaxAge:     opts.MaxAgeDays,
			MaxBackups: opts.MaxBackups,
		})
	}

	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(opts.Caller)
	return logger, nil
}

// WithStream tags every entry with a stream id.
func WithStream(log logrus.FieldLogger, id string) *logrus.Entry {
	return log.WithField(StreamIDKey, id)
}

// Discard returns a logger that drops everything, for tools and tests that
// need a FieldLogger but no output.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
