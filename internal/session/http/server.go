package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Server is the loopback listener the external-auth provider redirects to.
type Server struct {
	inner    *http.Server
	listener net.Listener
	handler  *CallbackHandler
}

// NewServer wires the callback routes onto a fresh gin engine bound to addr.
func NewServer(addr string, auth Authenticator) *Server {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware())

	handler := NewCallbackHandler(auth)
	handler.Register(r)

	return &Server{
		inner: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		handler: handler,
	}
}

// Listen binds the address so the origin is reachable before the browser
// is sent away.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.inner.Addr)
	if err != nil {
		return fmt.Errorf("callback server: listen on %s: %w", s.inner.Addr, err)
	}
	s.listener = ln
	return nil
}

// Origin is the http origin the server is reachable at once listening.
func (s *Server) Origin() string {
	if s.listener != nil {
		return "http://" + s.listener.Addr().String()
	}
	return "http://" + s.inner.Addr
}

// Serve blocks serving requests until Shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	if err := s.inner.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Results yields one Result per callback attempt.
func (s *Server) Results() <-chan Result {
	return s.handler.Results()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.inner.Shutdown(ctx)
}
