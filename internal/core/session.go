package core

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/vovakirdan/netchat-server/internal/proto"
)

// State is a session's position in its lifecycle. Transitions only move
// forward: Unauthenticated -> Active -> Closed.
type State int

const (
	StateUnauthenticated State = iota
	StateActive
	StateClosed
)

const outboxSize = 32

// Session owns one connection for its whole lifetime: handshake first,
// then the message loop. All outbound writes funnel through a single
// writer goroutine fed by the outbox channel, which serializes the
// session's own traffic against private messages dispatched by other
// sessions.
type Session struct {
	id     string
	conn   LineConn
	reg    *Registry
	router *Router
	log    zerolog.Logger

	mu       sync.RWMutex
	username string
	state    State

	outbox    chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewSession constructs a session around an accepted connection. The
// caller still has to Add it to the registry and start Run.
func NewSession(id string, conn LineConn, reg *Registry, router *Router, logger *zerolog.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		reg:    reg,
		router: router,
		log: logger.With().
			Str("session_id", id).
			Str("remote", conn.RemoteAddr()).
			Logger(),
		outbox: make(chan string, outboxSize),
		done:   make(chan struct{}),
	}
}

// ID returns the immutable session identifier.
func (s *Session) ID() string { return s.id }

// Username returns the bound username, or "" before the handshake
// completes. Once set it never changes.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// activate is called by the registry, under the registry lock, when the
// username claim succeeds. Transitions only move forward: a session
// that already closed while its handshake line was in flight refuses
// the claim and stays terminal.
func (s *Session) activate(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateUnauthenticated {
		return false
	}
	s.username = name
	s.state = StateActive
	return true
}

// Run drives the session state machine until the connection drops or
// the context is cancelled. It must run in its own goroutine; any I/O
// failure here is fatal to this session only.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()

	stop := context.AfterFunc(ctx, s.Close)
	defer stop()

	go s.writeLoop()

	if err := s.handshake(); err != nil {
		if !errors.Is(err, io.EOF) && !errors.Is(err, ErrSessionClosed) {
			s.log.Debug().Err(err).Msg("handshake aborted")
		}
		return
	}

	s.log.Info().Str("user", s.Username()).Msg("handshake complete")
	s.router.AnnounceJoin(s)
	s.router.SendUserList(s)

	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			return
		}
		s.router.Route(s, line)
	}
}

// handshake reads username attempts until one is accepted. A rejected
// name keeps the session in the unauthenticated state awaiting the next
// line.
func (s *Session) handshake() error {
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			return err
		}

		if err := s.reg.Register(s, line); err != nil {
			if errors.Is(err, ErrNameTaken) {
				if sendErr := s.Send(proto.MsgNameTaken); sendErr != nil {
					return sendErr
				}
				continue
			}
			return err
		}

		return s.Send(proto.MsgNameAccepted)
	}
}

// Send queues one line for delivery. It never blocks: a closed session
// reports ErrSessionClosed and a backed-up outbox ErrSlowConsumer, so a
// stuck recipient cannot stall delivery to the others.
func (s *Session) Send(line string) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	select {
	case s.outbox <- line:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		return ErrSlowConsumer
	}
}

// Close moves the session to its terminal state: stop the writer,
// release the connection, unregister, and announce the departure if the
// handshake had completed. Every failure path funnels here and the
// sync.Once guarantees the sequence runs exactly once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		wasActive := s.state == StateActive
		s.state = StateClosed
		s.mu.Unlock()

		close(s.done)
		if err := s.conn.Close(); err != nil {
			s.log.Debug().Err(err).Msg("connection close")
		}

		s.reg.Unregister(s.id)
		if wasActive {
			s.router.AnnounceLeave(s)
		}
		s.log.Info().Msg("session closed")
	})
}

// writeLoop is the session's single writer. A write failure is a lost
// connection, which is fatal to this session only.
func (s *Session) writeLoop() {
	for {
		select {
		case line := <-s.outbox:
			if err := s.conn.WriteLine(line); err != nil {
				s.log.Warn().Err(err).Msg("outbound write failed")
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}
