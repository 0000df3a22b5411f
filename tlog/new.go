package tlog

import (
	"fmt"
	"os"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// New creates a top-level logger
func New(config Config) *zap.Logger {
	var sink zapcore.WriteSyncer = os.Stderr
	if config.Output != nil {
		sink = zapcore.AddSync(config.Output)
	}

	var encoder zapcore.Encoder
	switch config.Format {
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(DefaultEncoderConfig)
	case FormatText, "":
		var color bool
		switch config.Color {
		case ColorYes:
			color = true
		case ColorNo:
			color = false
		case ColorAuto:
			color = config.Output == nil && term.IsTerminal(unix.Stderr)
		default:
			panic(fmt.Errorf("unexpected --log-color value: %s", config.Color))
		}
		ec := DefaultEncoderConfig
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		if color {
			ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		encoder = zapcore.NewConsoleEncoder(ec)
	default:
		panic(fmt.Errorf("unexpected --log-format value: %s", config.Format))
	}

	level := zapcore.InfoLevel
	if config.Verbose {
		level = zapcore.DebugLevel
	}

	logger := zap.New(zapcore.NewCore(encoder, sink, level), zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	if config.Name != "" {
		logger = logger.Named(config.Name)
	}
	return logger
}

// NewForTesting creates a logger for use in unit tests. Messages at all levels
// go to the test log.
func NewForTesting(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.Level(zapcore.DebugLevel)).Named(t.Name())
}
