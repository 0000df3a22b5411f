// Package thttp runs HTTP servers under a context.
//
// Server.Run serves until its context is closed and then shuts down
// gracefully. Every request context descends from the context passed to Run,
// so handlers log with tlog.Get(r.Context()) and get the httpServer and
// remoteAddr fields for free. Requests still running at shutdown keep an open
// context for up to five seconds.
//
// Middleware are plain func(http.Handler) http.Handler values combined with
// Wrap; StandardMiddleware is the usual outermost set:
//
//	router := mux.NewRouter()
//	router.HandleFunc("/records/{id}", getRecord).Methods(http.MethodGet)
//	server := thttp.NewServer(listener, thttp.Wrap(router, thttp.StandardMiddleware))
//	spawn("http", parallel.Fail, server.Run)
package thttp
