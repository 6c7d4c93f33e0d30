// Package tcp accepts stream connections and hands each one to a core
// session, translating between raw sockets and the line channel the
// core expects.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/netchat-server/internal/core"
	"github.com/vovakirdan/netchat-server/internal/utils"
)

// Server runs the accept loop: one goroutine per accepted connection,
// running until that connection closes.
type Server struct {
	addr   string
	reg    *core.Registry
	router *core.Router
	log    *zerolog.Logger

	mu sync.Mutex
	ln net.Listener
}

// NewServer builds a server over an already-wired registry and router.
func NewServer(addr string, reg *core.Registry, router *core.Router, logger *zerolog.Logger) *Server {
	return &Server{
		addr:   addr,
		reg:    reg,
		router: router,
		log:    logger,
	}
}

// Listen binds the TCP listener. Split from Serve so callers can bind
// ":0" and then read the chosen address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	return nil
}

// Addr reports the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Serve accepts connections until the context is cancelled or the
// listener fails. A listener failure is fatal to the whole server; in
// both cases every live session is force-closed before returning.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("tcp: Serve called before Listen")
	}

	defer ln.Close()
	defer s.reg.CloseAll()

	stop := context.AfterFunc(ctx, func() {
		ln.Close()
	})
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		sess := core.NewSession(utils.NewID(), NewLineConn(conn), s.reg, s.router, s.log)
		s.reg.Add(sess)
		s.log.Debug().
			Str("session_id", sess.ID()).
			Str("remote", conn.RemoteAddr().String()).
			Msg("connection accepted")
		go sess.Run(ctx)
	}
}

// ListenAndServe combines Listen and Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}
