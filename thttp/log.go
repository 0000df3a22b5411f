package thttp

import (
	"net/http"
	"time"

	"github.com/ridge/orgkit/tlog"
	"go.uber.org/zap"
)

// Log is a middleware that logs every request. Handlers get a logger with the
// method and the URL of the request.
//
// Server errors are logged as warnings, everything else at debug level.
func Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := tlog.With(r.Context(), zap.String("method", r.Method), zap.String("url", r.URL.String()))
		logger := tlog.Get(ctx)
		logger.Debug("HTTP request started")

		started := time.Now()
		var res Response
		next.ServeHTTP(Capture(w, &res), r.WithContext(ctx))

		log := logger.Debug
		if res.Status >= http.StatusInternalServerError {
			log = logger.Warn
		}
		log("HTTP request finished",
			zap.Int("statusCode", res.Status),
			zap.Int("bytes", res.Bytes),
			zap.Duration("elapsed", time.Since(started)))
	})
}
