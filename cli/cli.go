// Package cli is the orgkit command-line tool. It loads a data file into a
// resource store, then queries, exports, serves or watches it.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sort"
	"strings"

	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/orgfile"
	"github.com/ridge/orgkit/record"
	"github.com/ridge/orgkit/resources"
	"github.com/ridge/orgkit/run"
	"github.com/ridge/orgkit/store"
	"github.com/ridge/orgkit/tlog"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// Exit codes besides 0 and 1
const (
	ExitUsage    = 2
	ExitNotFound = 3
)

// Config is the command line of the tool
type Config struct {
	File string // data file, required

	// Kind selects a known resource (see resources.Kinds). The fields below
	// override its configuration. Without Kind, KeyField is required.
	Kind         string
	Resource     string
	KeyField     string
	IDField      string
	LowerCaseIDs bool
	Indexes      []string // "name=field[:one|many]"
	Locale       string

	Sort   string // list order field
	NoSort bool   // list in file order
	Output string // json or yaml, default json

	Listen   string       // serve address
	Listener net.Listener // overrides Listen
}

// Main handles the command line and runs the tool
func Main(args []string) {
	var cfg Config
	pflag.StringVarP(&cfg.File, "file", "f", "", "Data file (.json, .yaml or .yml)")
	pflag.StringVarP(&cfg.Kind, "kind", "k", "", "Resource kind: "+kindNames())
	pflag.StringVar(&cfg.Resource, "resource", "", "Name of a single record in messages")
	pflag.StringVar(&cfg.KeyField, "key", "", "Key field the record ids are derived from")
	pflag.StringVar(&cfg.IDField, "id-field", "", "Field holding the record ids (default \"id\")")
	pflag.BoolVar(&cfg.LowerCaseIDs, "lower-case-ids", false, "Derive lower-cased ids from the key field")
	pflag.StringArrayVar(&cfg.Indexes, "index", nil, "Secondary index name=field[:one|many] (can be repeated)")
	pflag.StringVar(&cfg.Locale, "locale", "", "Locale of the default list order, e.g. en or sv")
	pflag.StringVar(&cfg.Sort, "sort", "", "Field to order listed records by (default: the key field)")
	pflag.BoolVar(&cfg.NoSort, "no-sort", false, "List records in file order")
	pflag.StringVarP(&cfg.Output, "output", "o", "json", "Output format (json|yaml)")
	pflag.StringVar(&cfg.Listen, "listen", "localhost:8080", "Address to serve on (serve)")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] COMMAND [ARGS]\n\nCommands:\n%s\nFlags:\n", args[0], commandHelp())
		pflag.PrintDefaults()
	}
	_ = pflag.CommandLine.Parse(args[1:])

	command := pflag.Args()
	task := func(ctx context.Context) error {
		return Run(ctx, cfg, command, os.Stdout)
	}
	if len(command) > 0 && commands[command[0]].long {
		run.Server(task)
	} else {
		run.Tool(task)
	}
}

// Run executes a command: its name followed by its arguments
func Run(ctx context.Context, cfg Config, command []string, out io.Writer) error {
	if len(command) == 0 {
		return usageError("no command given, expected one of %s", strings.Join(commandNames(), ", "))
	}
	cmd, ok := commands[command[0]]
	if !ok {
		return usageError("unknown command %q, expected one of %s", command[0], strings.Join(commandNames(), ", "))
	}
	if len(command)-1 != len(cmd.args) {
		return usageError("usage: %s", cmd.usage(command[0]))
	}
	if cfg.File == "" {
		return usageError("--file is required")
	}
	format, err := orgfile.ParseFormat(defaultString(cfg.Output, "json"))
	if err != nil {
		return usageError("%v", err)
	}
	config, err := cfg.storeConfig(tlog.Get(ctx))
	if err != nil {
		return err
	}
	st, err := load(cfg.File, config)
	if err != nil {
		return err
	}

	err = cmd.run(ctx, &env{cfg: cfg, config: config, store: st, out: out, format: format}, command[1:])
	if errors.Is(err, store.ErrNotFound) {
		return run.ExitError{Code: ExitNotFound, Err: err}
	}
	return err
}

func load(path string, config store.Config) (*store.Store, error) {
	records, err := orgfile.Load(path)
	if err != nil {
		return nil, err
	}
	st, err := store.New(config, records)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return st, nil
}

func (c Config) storeConfig(logger *zap.Logger) (store.Config, error) {
	var config store.Config
	if c.Kind != "" {
		kind, err := resources.Find(c.Kind)
		if err != nil {
			return store.Config{}, usageError("%v", err)
		}
		config = kind.Config(logger)
	}
	if c.Resource != "" {
		config.Resource = c.Resource
	}
	if c.KeyField != "" {
		config.KeyField = c.KeyField
	}
	if c.IDField != "" {
		config.IDField = c.IDField
	}
	if c.LowerCaseIDs {
		config.IDNormalizer = record.LowerCase
	}
	if c.Locale != "" {
		tag, err := language.Parse(c.Locale)
		if err != nil {
			return store.Config{}, usageError("invalid --locale: %v", err)
		}
		config.Locale = tag
	}
	for _, s := range c.Indexes {
		spec, err := indices.ParseSpec(s)
		if err != nil {
			return store.Config{}, usageError("invalid --index: %v", err)
		}
		config.Indexes = append(config.Indexes, spec)
	}
	if config.KeyField == "" {
		return store.Config{}, usageError("either --kind or --key is required")
	}
	config.Logger = logger
	return config, nil
}

func usageError(format string, args ...any) error {
	return run.ExitError{Code: ExitUsage, Err: fmt.Errorf(format, args...)}
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func kindNames() string {
	names := make([]string, 0, len(resources.Kinds))
	for _, k := range resources.Kinds {
		names = append(names, k.Name)
	}
	return strings.Join(names, "|")
}

func commandNames() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func commandHelp() string {
	var b strings.Builder
	for _, name := range commandNames() {
		fmt.Fprintf(&b, "  %-22s %s\n", commands[name].usage(name), commands[name].help)
	}
	return b.String()
}
