package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/vovakirdan/netchat-server/internal/utils"
)

func TestRegisterConcurrentSameName(t *testing.T) {
	f := newFixture()

	const contenders = 32

	sessions := make([]*Session, contenders)
	for i := range sessions {
		s, _ := f.spawn(t)
		sessions[i] = s
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			err := f.reg.Register(s, "highlander")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, ErrNameTaken):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(s)
	}
	wg.Wait()

	if accepted != 1 || rejected != contenders-1 {
		t.Fatalf("accepted=%d rejected=%d, want 1/%d", accepted, rejected, contenders-1)
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	f := newFixture()

	s, _ := f.spawn(t)
	if err := f.reg.Register(s, "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}

	f.reg.Unregister(s.ID())
	f.reg.Unregister(s.ID())

	if _, ok := f.reg.LookupByUsername("alice"); ok {
		t.Fatal("alice still resolvable after unregister")
	}
	if got := f.reg.Len(); got != 0 {
		t.Fatalf("registry holds %d sessions, want 0", got)
	}
}

func TestSnapshotReportsActivationOrder(t *testing.T) {
	f := newFixture()

	for _, name := range []string{"carol", "alice", "bob"} {
		s, _ := f.spawn(t)
		if err := f.reg.Register(s, name); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	got := f.reg.SnapshotUsernames()
	want := []string{"carol", "alice", "bob"}
	if len(got) != len(want) {
		t.Fatalf("snapshot %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("snapshot %v, want %v", got, want)
		}
	}
}

func TestRegisterRefusedForRemovedSession(t *testing.T) {
	f := newFixture()

	s, _ := f.spawn(t)
	f.reg.Unregister(s.ID())

	if err := f.reg.Register(s, "ghost"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("register after removal: %v, want ErrSessionClosed", err)
	}
	if _, ok := f.reg.LookupByUsername("ghost"); ok {
		t.Fatal("ghost must not be resolvable")
	}
}

func TestEmptyUsernameIsReclaimable(t *testing.T) {
	f := newFixture()

	a, _ := f.spawn(t)
	if err := f.reg.Register(a, ""); err != nil {
		t.Fatalf("register empty name: %v", err)
	}
	f.reg.Unregister(a.ID())

	if _, ok := f.reg.LookupByUsername(""); ok {
		t.Fatal("empty name still resolvable after unregister")
	}

	b, _ := f.spawn(t)
	if err := f.reg.Register(b, ""); err != nil {
		t.Fatalf("empty name not reclaimable: %v", err)
	}
	if got := f.reg.SnapshotUsernames(); len(got) != 1 || got[0] != "" {
		t.Fatalf("unexpected snapshot: %q", got)
	}
}

func TestUnregisterHandshakerKeepsActiveEmptyName(t *testing.T) {
	f := newFixture()

	a, _ := f.spawn(t)
	if err := f.reg.Register(a, ""); err != nil {
		t.Fatalf("register empty name: %v", err)
	}

	// A session that never completed the handshake also reports "".
	lurker, _ := f.spawn(t)
	f.reg.Unregister(lurker.ID())

	if s, ok := f.reg.LookupByUsername(""); !ok || s.ID() != a.ID() {
		t.Fatal("active empty-name session evicted by a handshaker's unregister")
	}
}

func TestRegisterNeverReactivatesClosedSession(t *testing.T) {
	f := newFixture()

	fc := newFakeConn()
	s := NewSession(utils.NewID(), fc, f.reg, f.router, f.log)
	f.reg.Add(s)
	s.Close()

	// Model the window where Close has flipped the state but its
	// unregister has not landed yet.
	f.reg.Add(s)
	defer f.reg.Unregister(s.ID())

	if err := f.reg.Register(s, "ghost"); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("register on closed session: %v, want ErrSessionClosed", err)
	}
	if got := s.State(); got != StateClosed {
		t.Fatalf("session state = %v, want StateClosed", got)
	}
	if _, ok := f.reg.LookupByUsername("ghost"); ok {
		t.Fatal("ghost must not be resolvable")
	}
}

func TestForEachExceptSkipsSenderAndHandshakers(t *testing.T) {
	f := newFixture()

	a, _ := f.spawn(t)
	b, _ := f.spawn(t)
	if err := f.reg.Register(a, "alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := f.reg.Register(b, "bob"); err != nil {
		t.Fatalf("register: %v", err)
	}
	f.spawn(t) // never registers

	var seen []string
	f.reg.ForEachExcept(a.ID(), func(s *Session) {
		seen = append(seen, s.Username())
	})

	if len(seen) != 1 || seen[0] != "bob" {
		t.Fatalf("visited %v, want [bob]", seen)
	}
}
