package globaltime

import (
	"testing"
	"time"
)

func TestFreezeAndSince(t *testing.T) {
	at := time.Date(2024, 3, 1, 18, 0, 0, 0, time.FixedZone("EET", 2*60*60))
	restore := Freeze(at)
	defer restore()

	if got := UTC(); !got.Equal(at) || got.Location() != time.UTC {
		t.Fatalf("expected frozen UTC time, got %v", got)
	}
	if got := Since(at.Add(-90 * time.Second)); got != 90*time.Second {
		t.Fatalf("expected 90s elapsed, got %v", got)
	}
}
