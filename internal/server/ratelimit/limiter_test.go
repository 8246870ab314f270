package ratelimit

import (
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	t.Run("allows up to burst", func(t *testing.T) {
		l := NewLimiter(10, time.Minute, 3)
		defer l.Close()
		for i := range 3 {
			if ok, _ := l.Allow("a"); !ok {
				t.Fatalf("request %d was denied within burst", i)
			}
		}
		ok, retryAfter := l.Allow("a")
		if ok {
			t.Error("request beyond burst was allowed")
		}
		if retryAfter <= 0 {
			t.Errorf("expected a positive retry-after, got %v", retryAfter)
		}
	})

	t.Run("keys are independent", func(t *testing.T) {
		l := NewLimiter(10, time.Minute, 1)
		defer l.Close()
		if ok, _ := l.Allow("a"); !ok {
			t.Fatal("first request for a was denied")
		}
		if ok, _ := l.Allow("b"); !ok {
			t.Error("first request for b was denied")
		}
	})
}
