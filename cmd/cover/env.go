package main

import (
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cover "github.com/alnah/go-cover"
)

// Environment holds injectable dependencies for testability.
// Includes I/O, time, environment lookup and logging.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Logger *zap.Logger

	// Fonts replaces host font discovery when set.
	Fonts cover.FontSource

	// NewPool creates the generator pool for markup renders.
	NewPool func(n int, opts ...cover.Option) Pool
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:     time.Now,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Logger:  zap.NewNop(),
		NewPool: newGeneratorPool,
	}
}

// newLogger builds a console logger on w.
// Verbose enables debug output, quiet restricts output to errors.
func newLogger(w io.Writer, quiet, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	switch {
	case verbose:
		level = zapcore.DebugLevel
	case quiet:
		level = zapcore.ErrorLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core)
}
