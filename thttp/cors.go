package thttp

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CORS is a middleware that allows cross-origin reads
var CORS = handlers.CORS(
	handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodOptions}),
	handlers.AllowedHeaders([]string{"Accept", "Accept-Encoding", "Cache-Control", "Content-Type", "If-Modified-Since", "User-Agent"}),
	handlers.ExposedHeaders([]string{"Content-Length", "Content-Encoding"}),
	handlers.AllowedOrigins([]string{"*"}),
)

// Compress is a middleware that gzip- or deflate-compresses responses for
// clients that accept it
func Compress(next http.Handler) http.Handler {
	return handlers.CompressHandler(next)
}
