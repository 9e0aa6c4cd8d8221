package log

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

type Fields = logrus.Fields

// Options selects where logs go.
type Options struct {
	Level string
	File  string // empty disables the rotating file
	// Console output is off during play so it does not tear the screen.
	Console io.Writer
}

// NewLogger builds the application logger.
func NewLogger(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		lvl, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = lvl
	}
	logger.SetLevel(level)

	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.File != "" && opts.Console == nil,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    20,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	if len(writers) == 0 {
		logger.SetOutput(io.Discard)
	} else {
		logger.SetOutput(io.MultiWriter(writers...))
	}
	logger.SetReportCaller(true)

	return logger, nil
}

// Must is NewLogger for callers that cannot recover, falling back to stderr.
func Must(opts Options) *logrus.Logger {
	l, err := NewLogger(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %v, using defaults\n", err)
		opts.Level = ""
		l, _ = NewLogger(opts)
	}
	return l
}
