package rate

import (
	"testing"
	"time"
)

func TestAllowWithinWindow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewLimiter()
	l.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		if !l.Allow("a", 3, time.Minute) {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("a", 3, time.Minute) {
		t.Fatal("fourth request should be rejected")
	}
	// other keys have their own window
	if !l.Allow("b", 3, time.Minute) {
		t.Fatal("distinct key should be allowed")
	}
}

func TestWindowResets(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	l := NewLimiter()
	l.now = func() time.Time { return now }

	if !l.Allow("a", 1, time.Minute) {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("a", 1, time.Minute) {
		t.Fatal("second request in window should be rejected")
	}
	now = base.Add(time.Minute)
	if !l.Allow("a", 1, time.Minute) {
		t.Fatal("request in the next window should be allowed")
	}
}
