// Package run runs the top-level task of a command-line tool with logging and
// signal handling set up.
package run

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ridge/orgkit/tlog"
	"github.com/ridge/parallel"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	fs = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)

	logConfig = tlog.Config{Format: tlog.FormatText}
)

func init() {
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Var(&logConfig.Format, "log-format", "Log format (json|text)")
	fs.Var(&logConfig.Color, "log-color", "Colored logs (yes|no|auto)")
	fs.BoolVarP(&logConfig.Verbose, "verbose", "v", false, "Enable verbose (debug level) messages")
	// Hide usage while parsing the command line here, will be covered by a regular command line parsing.
	fs.Usage = func() {}

	// Add options help to the main command-line parser.
	pflag.CommandLine.AddFlagSet(fs)
}

// Tool runs the top-level task of your program, watching for signals.
//
// The context passed to the task carries a logger configured by the
// --log-format, --log-color and --verbose flags.
//
// If an interruption or termination signal arrives, the context passed to the
// task is closed.
//
// Tool does not return. It exits with code 0 if the task returns nil, with the
// code of an error implementing WithExitCode, and with code 1 otherwise.
//
// Any defer handlers installed before calling Tool are ignored, so most or all
// of the main code belongs inside the task:
//
//	func main() {
//	    pflag.Parse()
//	    run.Tool(func(ctx context.Context) error {
//	        records, err := orgfile.Load(file)
//	        if err != nil {
//	            return err
//	        }
//	        ...
//	    })
//	}
func Tool(task func(ctx context.Context) error) {
	// os.Exit doesn't run deferred functions, so we'll call it in the first
	// defer which runs last
	var err error
	defer func() {
		if code := ExitCode(err); code != 0 {
			os.Exit(code)
		}
	}()

	ctx := rootContext()
	err = Task(ctx, task)
	if err != nil {
		tlog.Get(ctx).Error("Error", zap.Error(err))
	}
}

// Task runs the task until it returns or a termination signal arrives
func Task(ctx context.Context, task func(ctx context.Context) error) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("main", parallel.Exit, task)
		spawn("signals", parallel.Exit, handleSignals)
		return nil
	})
}

// Server runs the top-level task of your program similar to Tool.
//
// The difference is in signal handling: if the top-level task exits with
// (possibly wrapped) context.Canceled while handling the signal, the program
// exits with code 0.
//
// Note that any other error returned during signal handling is still considered
// an error and makes Server exit with code 1.
func Server(task func(ctx context.Context) error) {
	Tool(serverTask(task))
}

func serverTask(task func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := task(ctx)
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return nil
		}
		return err
	}
}

// WithExitCode is an optional interface that can be implemented by an error.
//
// When a (possibly wrapped) error implementing WithExitCode reaches the top
// level, the value returned by the ExitCode method becomes the exit code of the
// process. The default exit code for other errors is 1.
type WithExitCode interface {
	ExitCode() int
}

// ExitCode returns the process exit code for the error returned by a task
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var wec WithExitCode
	if errors.As(err, &wec) {
		return wec.ExitCode()
	}
	return 1
}

// ExitError is an error carrying an exit code
type ExitError struct {
	Code int
	Err  error
}

func (e ExitError) Error() string {
	return e.Err.Error()
}

func (e ExitError) Unwrap() error {
	return e.Err
}

// ExitCode implements WithExitCode
func (e ExitError) ExitCode() int {
	return e.Code
}

// cliConfig returns the logging configuration derived from the command line
func cliConfig() tlog.Config {
	if err := fs.Parse(os.Args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return logConfig
}

func rootContext() context.Context {
	return tlog.WithLogger(context.Background(), tlog.New(cliConfig()))
}
