// Package server is a read-only HTTP browser over a store.
//
// Routes:
//
//	GET /                       summary: resource, key field, record count, indexes
//	GET /records                all records, ?sort=field or ?nosort=1
//	GET /records/{id}           one record by id
//	GET /indexes                index specifications
//	GET /indexes/{index}        index contents: keys in order, each with its ids
//	GET /indexes/{index}/{key}  record (ONE_TO_ONE) or records (ONE_TO_MANY) by key
//
// Path keys are matched as text first, then as a number or a boolean. Errors
// are JSON objects with a single "error" field: 404 for missing records and
// keys, 400 for unknown indexes, 500 for records JSON cannot represent, such as
// those holding NaN or infinite numbers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/ridge/must/v2"
	"github.com/ridge/orgkit/indices"
	"github.com/ridge/orgkit/store"
	"github.com/ridge/orgkit/thttp"
	"github.com/ridge/orgkit/tlog"
	"go.uber.org/zap"
)

// Server serves one store. A single lock guards the store, so it can be
// replaced by Reload while requests are running.
type Server struct {
	mu    sync.Mutex
	store *store.Store
}

// New creates a Server for the store
func New(s *store.Store) *Server {
	return &Server{store: s}
}

// Reload replaces the served store
func (s *Server) Reload(next *store.Store) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = next
}

// Store returns the served store
func (s *Server) Store() *store.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Run serves on the listener until the context is closed
func (s *Server) Run(ctx context.Context, listener net.Listener) error {
	ctx = tlog.With(ctx, zap.String("resource", s.Store().Resource()))
	return thttp.NewServer(listener, thttp.Wrap(s.Handler(), thttp.StandardMiddleware)).Run(ctx)
}

// Handler returns the router without middleware
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", s.locked(s.summary)).Methods(http.MethodGet)
	router.HandleFunc("/records", s.locked(s.list)).Methods(http.MethodGet)
	router.HandleFunc("/records/{id}", s.locked(s.get)).Methods(http.MethodGet)
	router.HandleFunc("/indexes", s.locked(s.indexes)).Methods(http.MethodGet)
	router.HandleFunc("/indexes/{index}", s.locked(s.index)).Methods(http.MethodGet)
	router.HandleFunc("/indexes/{index}/{key}", s.locked(s.lookup)).Methods(http.MethodGet)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody{Error: "no such page " + r.URL.Path})
	})
	return router
}

// handlerFunc produces a response body from the store, or fails
type handlerFunc func(st *store.Store, r *http.Request) (any, error)

// locked runs fn under the lock and writes the response after releasing it
func (s *Server) locked(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		body, err := fn(s.store, r)
		s.mu.Unlock()

		if err != nil {
			status := statusOf(err)
			if status == http.StatusInternalServerError {
				tlog.Get(r.Context()).Error("Request failed", zap.Error(err))
			}
			writeJSON(w, r, status, errorBody{Error: err.Error()})
			return
		}
		writeJSON(w, r, http.StatusOK, body)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrUnknownIndex), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errBadRequest}, args...)...)
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		err = fmt.Errorf("failed to encode response: %w", err)
		tlog.Get(r.Context()).Error("Request failed", zap.Error(err))
		status = http.StatusInternalServerError
		data = must.OK1(json.Marshal(errorBody{Error: err.Error()}))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

type summaryBody struct {
	Resource string   `json:"resource"`
	KeyField string   `json:"keyField"`
	IDField  string   `json:"idField"`
	Records  int      `json:"records"`
	Indexes  []string `json:"indexes"`
}

func (s *Server) summary(st *store.Store, r *http.Request) (any, error) {
	return summaryBody{
		Resource: st.Resource(),
		KeyField: st.KeyField(),
		IDField:  st.IDField(),
		Records:  st.Len(),
		Indexes:  st.IndexNames(),
	}, nil
}

func (s *Server) list(st *store.Store, r *http.Request) (any, error) {
	query := r.URL.Query()
	opts := store.ListOptions{SortField: query.Get("sort")}
	if v := query.Get("nosort"); v != "" {
		noSort, err := strconv.ParseBool(v)
		if err != nil {
			return nil, badRequest("invalid nosort value '%s'", v)
		}
		opts.NoSort = noSort
	}
	return st.List(opts), nil
}

func (s *Server) get(st *store.Store, r *http.Request) (any, error) {
	return st.GetText(mux.Vars(r)["id"], store.Required)
}

type specBody struct {
	Name         string `json:"name"`
	KeyField     string `json:"keyField"`
	Relationship string `json:"relationship"`
}

func (s *Server) indexes(st *store.Store, r *http.Request) (any, error) {
	names := st.IndexNames()
	specs := make([]specBody, 0, len(names))
	for _, name := range names {
		spec, err := specOf(st, name)
		if err != nil {
			return nil, err
		}
		specs = append(specs, specBody{Name: spec.Name, KeyField: spec.KeyField, Relationship: spec.Relationship.String()})
	}
	return specs, nil
}

func specOf(st *store.Store, name string) (indices.Spec, error) {
	h, err := st.Index(name)
	if err != nil {
		return indices.Spec{}, err
	}
	return st.Spec(h)
}

// indexEntry keeps the key's own type: int 1 and string "1" are distinct
// entries
type indexEntry struct {
	Key any   `json:"key"`
	IDs []any `json:"ids"`
}

func (s *Server) index(st *store.Store, r *http.Request) (any, error) {
	h, err := st.Index(mux.Vars(r)["index"])
	if err != nil {
		return nil, err
	}
	keys, err := st.IndexKeys(h)
	if err != nil {
		return nil, err
	}
	ids, err := st.IndexIDs(h)
	if err != nil {
		return nil, err
	}
	entries := make([]indexEntry, 0, len(keys))
	for _, k := range keys {
		entry := indexEntry{Key: k.Value(), IDs: make([]any, 0, len(ids[k]))}
		for _, id := range ids[k] {
			entry.IDs = append(entry.IDs, id.Value())
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Server) lookup(st *store.Store, r *http.Request) (any, error) {
	vars := mux.Vars(r)
	m, err := st.GetByIndexText(vars["index"], vars["key"], store.Required)
	if err != nil {
		return nil, err
	}
	if m.Relationship == indices.OneToOne {
		return m.Record, nil
	}
	return m.Records, nil
}
