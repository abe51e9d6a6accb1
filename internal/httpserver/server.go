package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server wraps http.Server with timeouts suited to an API that also accepts
// large multipart video uploads.
type Server struct {
	inner *http.Server
}

// New constructs a server listening on the provided port. WriteTimeout is
// generous because it spans the whole request, and admin video uploads can
// carry payloads in the hundreds of megabytes.
func New(port int, handler http.Handler) *Server {
	return &Server{
		inner: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      5 * time.Minute,
			IdleTimeout:       time.Minute,
			MaxHeaderBytes:    1 << 20,
		},
	}
}

// Addr reports the listen address.
func (s *Server) Addr() string {
	return s.inner.Addr
}

// Start begins serving HTTP traffic and blocks until the listener closes.
func (s *Server) Start() error {
	return s.inner.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests,
// bounded by the caller's context.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
