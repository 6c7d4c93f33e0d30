package core

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/netchat-server/internal/utils"
)

// fakeConn is an in-memory LineConn driven by channels: push inbound
// lines into in, observe outbound lines on out.
type fakeConn struct {
	in     chan string
	out    chan string
	closed chan struct{}
	once   sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan string, 16),
		out:    make(chan string, 64),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) ReadLine() (string, error) {
	select {
	case line := <-c.in:
		return line, nil
	case <-c.closed:
		return "", io.EOF
	}
}

func (c *fakeConn) WriteLine(line string) error {
	select {
	case c.out <- line:
		return nil
	case <-c.closed:
		return errors.New("fake conn closed")
	}
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) RemoteAddr() string { return "fake" }

// fixture wires a registry and router with a frozen clock so stamped
// lines are deterministic ("12:30").
type fixture struct {
	reg    *Registry
	router *Router
	log    *zerolog.Logger
}

func newFixture() *fixture {
	logger := zerolog.Nop()
	reg := NewRegistry()
	router := NewRouter(reg, &logger)
	router.now = func() time.Time {
		return time.Date(2026, time.January, 2, 12, 30, 0, 0, time.UTC)
	}
	return &fixture{reg: reg, router: router, log: &logger}
}

// spawn creates a session around a fake conn and starts its loop.
func (f *fixture) spawn(t *testing.T) (*Session, *fakeConn) {
	t.Helper()

	fc := newFakeConn()
	s := NewSession(utils.NewID(), fc, f.reg, f.router, f.log)
	f.reg.Add(s)
	go s.Run(context.Background())
	t.Cleanup(s.Close)
	return s, fc
}

// join drives the handshake for name and consumes the acceptance and
// user list lines, asserting the expected snapshot.
func (f *fixture) join(t *testing.T, fc *fakeConn, name, wantUserList string) {
	t.Helper()

	fc.in <- name
	mustLine(t, fc, "Имя принято")
	mustLine(t, fc, wantUserList)
}

func mustLine(t *testing.T, c *fakeConn, want string) {
	t.Helper()

	select {
	case got := <-c.out:
		if got != want {
			t.Fatalf("received %q, want %q", got, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func mustNoLine(t *testing.T, c *fakeConn) {
	t.Helper()

	select {
	case got := <-c.out:
		t.Fatalf("unexpected line %q", got)
	case <-time.After(100 * time.Millisecond):
	}
}
