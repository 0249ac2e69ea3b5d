package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Logger struct {
	zerolog.Logger
}

// New creates a new structured logger
func New() *Logger {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with specific log level
func NewWithLevel(level zerolog.Level) *Logger {
	l := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	return &Logger{Logger: l}
}

// NewForTesting creates a logger for testing (discards output)
func NewForTesting() *Logger {
	return &Logger{Logger: zerolog.New(io.Discard)}
}
