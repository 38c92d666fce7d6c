package leap_test

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leap-go/leap/leap"
)

func TestLatencyStats_String_NoSamples_DoesNotPanic(t *testing.T) {
	ls := leap.NewLatencyStats("/no/samples")

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("String() panicked with no samples: %v", r)
		}
	}()

	s := ls.String()
	if !strings.Contains(s, "last=never") {
		t.Fatalf("String() = %q, want last=never", s)
	}
}

func TestLatencyStats_String_OneSample(t *testing.T) {
	ls := leap.NewLatencyStats("/one/sample")
	ls.Sample(314 * time.Millisecond)
	s := ls.String()
	for _, v := range []string{"min=314ms", "max=314ms", "mean=314ms"} {
		if !strings.Contains(s, v) {
			t.Fatal("String() did not include", v, "\n", s)
		}
	}
}

func TestLatencyStats_String_TwoSamples(t *testing.T) {
	ls := leap.NewLatencyStats("/two/samples")
	ls.Sample(100 * time.Millisecond)
	ls.Sample(300 * time.Millisecond)
	s := ls.String()
	for _, v := range []string{"min=100ms", "max=300ms", "mean=200ms"} {
		if !strings.Contains(s, v) {
			t.Fatal("String() did not include", v, "\n", s)
		}
	}
	if ls.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", ls.Count())
	}
}

func TestLatencyStats_ConcurrentSamples(t *testing.T) {
	ls := leap.NewLatencyStats("/concurrent/samples")

	const n = 1000
	var wg sync.WaitGroup
	wg.Add(n)

	for range n {
		go func() {
			defer wg.Done()
			ls.Sample(time.Millisecond)
		}()
	}

	wg.Wait()

	if ls.Count() != n {
		t.Fatalf("Count() = %d, want %d", ls.Count(), n)
	}
	s := ls.String()
	for _, v := range []string{"samples=1000", "min=1ms", "max=1ms", "mean=1ms"} {
		if !strings.Contains(s, v) {
			t.Fatal("String() did not include", v, "\n", s)
		}
	}
}

func TestLatencyStats_Stale(t *testing.T) {
	ls := leap.NewLatencyStats("/zone/842/status")

	if ls.Stale(time.Hour) {
		t.Fatal("Stale() = true before any sample, want false for a positive ttl")
	}

	ls.Sample(5 * time.Millisecond)
	if ls.Stale(time.Hour) {
		t.Fatal("Stale(time.Hour) = true right after a sample, want false")
	}
	if !ls.Stale(0) {
		t.Fatal("Stale(0) = false right after a sample, want true")
	}
}
