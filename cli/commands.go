package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ridge/must/v2"
	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/orgfile"
	"github.com/ridge/orgkit/record"
	"github.com/ridge/orgkit/server"
	"github.com/ridge/orgkit/store"
	"github.com/ridge/orgkit/thttp"
	"github.com/ridge/orgkit/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

type env struct {
	cfg    Config
	config store.Config
	store  *store.Store
	out    io.Writer
	format orgfile.Format
}

type command struct {
	args []string
	help string
	long bool // runs until interrupted
	run  func(ctx context.Context, e *env, args []string) error
}

func (c command) usage(name string) string {
	return strings.Join(append([]string{name}, c.args...), " ")
}

var commands = map[string]command{
	"list":    {help: "List all records", run: list},
	"get":     {args: []string{"ID"}, help: "Show the record with the id", run: get},
	"lookup":  {args: []string{"INDEX", "KEY"}, help: "Show the records with the key in the index", run: lookup},
	"index":   {args: []string{"INDEX"}, help: "Show the keys of the index and their record ids", run: dumpIndex},
	"indexes": {help: "List the indexes", run: listIndexes},
	"export":  {args: []string{"PATH"}, help: "Write the records to a data file", run: export},
	"serve":   {help: "Serve the records over HTTP, reloading on change", long: true, run: serve},
	"watch":   {help: "Print a summary of the records on every change", long: true, run: watch},
}

func list(ctx context.Context, e *env, args []string) error {
	return orgfile.Encode(e.out, e.store.List(store.ListOptions{SortField: e.cfg.Sort, NoSort: e.cfg.NoSort}), e.format)
}

func get(ctx context.Context, e *env, args []string) error {
	r, err := e.store.GetText(args[0], store.Required)
	if err != nil {
		return err
	}
	return orgfile.Encode(e.out, r, e.format)
}

func lookup(ctx context.Context, e *env, args []string) error {
	m, err := e.store.GetByIndexText(args[0], args[1], store.Required)
	if err != nil {
		return err
	}
	if m.Relationship == indices.OneToOne {
		return orgfile.Encode(e.out, m.Record, e.format)
	}
	return orgfile.Encode(e.out, m.Records, e.format)
}

type indexEntry struct {
	Key any   `json:"key" yaml:"key"`
	IDs []any `json:"ids" yaml:"ids"`
}

func dumpIndex(ctx context.Context, e *env, args []string) error {
	h, err := e.store.Index(args[0])
	if err != nil {
		return err
	}
	keys, err := e.store.IndexKeys(h)
	if err != nil {
		return err
	}
	ids, err := e.store.IndexIDs(h)
	if err != nil {
		return err
	}
	entries := make([]indexEntry, 0, len(keys))
	for _, k := range keys {
		entry := indexEntry{Key: k.Value(), IDs: make([]any, 0, len(ids[k]))}
		for _, id := range ids[k] {
			entry.IDs = append(entry.IDs, id.Value())
		}
		entries = append(entries, entry)
	}
	return orgfile.Encode(e.out, entries, e.format)
}

func listIndexes(ctx context.Context, e *env, args []string) error {
	for _, name := range e.store.IndexNames() {
		h, err := e.store.Index(name)
		if err != nil {
			return err
		}
		spec, err := e.store.Spec(h)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(e.out, spec); err != nil {
			return err
		}
	}
	return nil
}

func export(ctx context.Context, e *env, args []string) error {
	if err := orgfile.Write(args[0], e.store.Export()); err != nil {
		return err
	}
	tlog.Get(ctx).Info("Records exported", zap.String("file", args[0]), zap.Int("records", e.store.Len()))
	return nil
}

// reload builds a store from changed records. Records the store rejects are
// logged, and nil is returned.
func (e *env) reload(ctx context.Context, records []record.Record) *store.Store {
	st, err := store.New(e.config, records)
	if err != nil {
		tlog.Get(ctx).Warn("Keeping the previous records", zap.String("file", e.cfg.File), zap.Error(err))
		return nil
	}
	return st
}

func serve(ctx context.Context, e *env, args []string) error {
	listener := e.cfg.Listener
	if listener == nil {
		var err error
		if listener, err = thttp.Listen(e.cfg.Listen); err != nil {
			return err
		}
	}
	watcher, err := orgfile.NewWatcher(e.cfg.File)
	if err != nil {
		listener.Close()
		return err
	}

	srv := server.New(e.store)
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		spawn("http", parallel.Fail, func(ctx context.Context) error {
			return srv.Run(ctx, listener)
		})
		spawn("watch", parallel.Fail, func(ctx context.Context) error {
			return watcher.Run(ctx, func(ctx context.Context, records []record.Record) error {
				if st := e.reload(ctx, records); st != nil {
					srv.Reload(st)
					tlog.Get(ctx).Info("Records reloaded", zap.Int("records", st.Len()))
				}
				return nil
			})
		})
		return nil
	})
}

func watch(ctx context.Context, e *env, args []string) error {
	watcher, err := orgfile.NewWatcher(e.cfg.File)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(e.out, summary(e.store)); err != nil {
		return err
	}
	return watcher.Run(ctx, func(ctx context.Context, records []record.Record) error {
		if st := e.reload(ctx, records); st != nil {
			_, err := fmt.Fprintln(e.out, summary(st))
			return err
		}
		return nil
	})
}

// summary is one line: the record count and the key count of every index
func summary(st *store.Store) string {
	names := st.IndexNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		keys := must.OK1(st.IndexKeys(must.OK1(st.Index(name))))
		parts = append(parts, fmt.Sprintf("%s=%d", name, len(keys)))
	}
	return fmt.Sprintf("%d records of %s; keys %s", st.Len(), st.Resource(), strings.Join(parts, " "))
}
