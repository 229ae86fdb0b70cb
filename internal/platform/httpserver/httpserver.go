// Package httpserver constructs the process's single HTTP listener.
package httpserver

import (
	"net/http"
	"time"
)

// New wraps the route tree in a server with network-level timeouts. Handler
// execution time is bounded separately by the router's timeout middleware, so
// only the header read and idle keep-alives are capped here.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
