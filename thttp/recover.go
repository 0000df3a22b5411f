package thttp

import (
	"net/http"
	"runtime/debug"

	"github.com/ridge/orgkit/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

// Recover is a middleware that turns a handler panic into a 500 response.
//
// Under Server.Run the panic is also reported to the server, which shuts down
// and returns it as parallel.ErrPanic.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler { //nolint:errorlint,goerr113 // sentinel panic value
				panic(p)
			}
			err := parallel.ErrPanic{Value: p, Stack: debug.Stack()}
			tlog.Get(r.Context()).Error("Panic in HTTP handler", zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			if panics, ok := r.Context().Value(panicKey).(chan error); ok {
				select {
				case panics <- err:
				default:
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
