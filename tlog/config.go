package tlog

import (
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format is the logging format
type Format string

// Format values
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// String implements pflag.Value
func (f *Format) String() string {
	return string(*f)
}

// Set implements pflag.Value
func (f *Format) Set(s string) error {
	switch Format(s) {
	case FormatJSON, FormatText:
		*f = Format(s)
		return nil
	}
	return fmt.Errorf("invalid log format %q, expected json or text", s)
}

// Type implements pflag.Value
func (f *Format) Type() string {
	return "json|text"
}

// Color is the coloring setting for text format
type Color string

// Color values
const (
	ColorAuto Color = ""
	ColorYes  Color = "yes"
	ColorNo   Color = "no"
)

// String implements pflag.Value
func (c *Color) String() string {
	if *c == ColorAuto {
		return "auto"
	}
	return string(*c)
}

// Set implements pflag.Value
func (c *Color) Set(s string) error {
	switch s {
	case "", "auto":
		*c = ColorAuto
	case "yes":
		*c = ColorYes
	case "no":
		*c = ColorNo
	default:
		return fmt.Errorf("invalid log color %q, expected yes, no or auto", s)
	}
	return nil
}

// Type implements pflag.Value
func (c *Color) Type() string {
	return "yes|no|auto"
}

// Config is the configuration for creating a top-level logger
type Config struct {
	Name    string // top-level logger name (optional)
	Format  Format
	Color   Color
	Verbose bool      // enable messages at Debug level
	Output  io.Writer // defaults to stderr
}

func iso8601MicroTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02T15:04:05.000000Z0700"))
}

// DefaultEncoderConfig is the default value of zap.EncoderConfig that we use
// when creating top-level loggers
var DefaultEncoderConfig = func() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = iso8601MicroTimeEncoder
	return ec
}()
