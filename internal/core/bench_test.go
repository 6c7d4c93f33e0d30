package core

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func benchmarkBroadcast(b *testing.B, recipients int) {
	logger := zerolog.Nop()
	reg := NewRegistry()
	router := NewRouter(reg, &logger)

	sender := NewSession("sender", newFakeConn(), reg, router, &logger)
	reg.Add(sender)
	if err := reg.Register(sender, "sender"); err != nil {
		b.Fatal(err)
	}

	for i := 0; i < recipients; i++ {
		fc := newFakeConn()
		s := NewSession(fmt.Sprintf("r%d", i), fc, reg, router, &logger)
		reg.Add(s)
		if err := reg.Register(s, fmt.Sprintf("user%d", i)); err != nil {
			b.Fatal(err)
		}
		go s.writeLoop()
		// Drain so the outbox never backpressures the dispatch path.
		go func(c *fakeConn) {
			for range c.out {
			}
		}(fc)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		router.Route(sender, "payload")
	}
}

func BenchmarkBroadcast_10(b *testing.B)  { benchmarkBroadcast(b, 10) }
func BenchmarkBroadcast_100(b *testing.B) { benchmarkBroadcast(b, 100) }
func BenchmarkBroadcast_500(b *testing.B) { benchmarkBroadcast(b, 500) }
