// Package httpserver builds the API server. Timeouts are fixed here rather
// than configurable: the service only ever serves small JSON bodies and the
// Prometheus scrape.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server for the given handler. Request deadlines beyond the
// header and body reads belong to the router's timeout middleware.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
