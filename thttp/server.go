package thttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ridge/must/v2"
	"github.com/ridge/orgkit/tlog"
	"github.com/ridge/parallel"
	"go.uber.org/zap"
)

const gracefulShutdownTimeout = 5 * time.Second

var listenConfig = net.ListenConfig{KeepAlive: 3 * time.Minute}

// Listen opens a listening socket.
//
// An address starting with "unix:" is the path of a UNIX domain socket.
// Anything else, optionally prefixed with "tcp:", is a TCP [host]:port.
func Listen(address string) (net.Listener, error) {
	network := "tcp"
	if rest, ok := strings.CutPrefix(address, "unix:"); ok {
		network, address = "unix", rest
	} else {
		address = strings.TrimPrefix(address, "tcp:")
	}
	return listenConfig.Listen(context.Background(), network, address)
}

// ListenOnRandomPort listens on a random local TCP port
func ListenOnRandomPort() net.Listener {
	return must.OK1(Listen("localhost:"))
}

// Server serves HTTP requests on a listener for the lifetime of a context
type Server struct {
	listener net.Listener
	handler  http.Handler
	running  sync.WaitGroup
}

// NewServer creates a Server
func NewServer(listener net.Listener, handler http.Handler) *Server {
	return &Server{listener: listener, handler: handler}
}

type panicKeyType int

const panicKey panicKeyType = iota

// Run serves requests until the context is closed or a handler panics, then
// shuts down gracefully, waiting up to gracefulShutdownTimeout for running
// requests
func (s *Server) Run(ctx context.Context) error {
	return parallel.Run(ctx, func(ctx context.Context, spawn parallel.SpawnFn) error {
		panics := make(chan error, 1)
		ctx = tlog.With(context.WithValue(ctx, panicKey, panics), zap.Stringer("httpServer", s.listener.Addr()))
		logger := tlog.Get(ctx)

		// Requests outlive ctx during shutdown
		reqCtx, reqCancel := context.WithCancel(detached{ctx})

		server := &http.Server{
			Handler:           s.track(s.handler),
			ErrorLog:          must.OK1(zap.NewStdLogAt(logger, zap.WarnLevel)),
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return reqCtx },
			ConnContext: func(ctx context.Context, conn net.Conn) context.Context {
				return tlog.With(ctx, zap.Stringer("remoteAddr", conn.RemoteAddr()))
			},
		}

		spawn("serve", parallel.Fail, func(ctx context.Context) error {
			logger.Info("Serving requests")
			err := server.Serve(s.listener)
			if errors.Is(err, http.ErrServerClosed) && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		})

		spawn("panics", parallel.Fail, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case err := <-panics:
				return err
			}
		})

		spawn("shutdown", parallel.Fail, func(ctx context.Context) error {
			<-ctx.Done()
			logger.Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(reqCtx, gracefulShutdownTimeout)
			defer cancel()
			defer reqCancel()
			defer server.Close()

			// Errors other than the timeout come from closing the listener
			if err := server.Shutdown(shutdownCtx); err != nil && shutdownCtx.Err() != nil {
				logger.Info("Shutdown canceled", zap.Error(err))
				return err
			}
			reqCancel()
			s.running.Wait()

			logger.Info("Shutdown complete")
			return ctx.Err()
		})
		return nil
	})
}

// ListenAddr returns the local address of the listener
func (s *Server) ListenAddr() net.Addr {
	return s.listener.Addr()
}

func (s *Server) track(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.running.Add(1)
		defer s.running.Done()
		next.ServeHTTP(w, r)
	})
}

// detached keeps the values of a context but not its cancellation
type detached struct {
	context.Context //nolint:containedctx
}

func (detached) Deadline() (time.Time, bool) { return time.Time{}, false }
func (detached) Done() <-chan struct{}       { return nil }
func (detached) Err() error                  { return nil }

// Wrap installs middleware on a handler. The first middleware listed is the
// first to see the request.
func Wrap(handler http.Handler, mw ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		handler = mw[i](handler)
	}
	return handler
}

// StandardMiddleware logs requests, recovers from panics, allows cross-origin
// reads and compresses responses, in this order
func StandardMiddleware(next http.Handler) http.Handler {
	return Wrap(next, Log, Recover, CORS, Compress)
}
