package clock

import (
	"testing"
	"time"
)

func TestVirtualNowAdvancesAtNaturalRate(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	v := NewVirtual(start, 100)

	first, err := v.Now("Etc/UTC")
	if err != nil {
		t.Fatalf("Now returned an error: %v", err)
	}
	if first.Before(start) {
		t.Fatalf("first Now() = %v, want >= %v", first, start)
	}

	time.Sleep(20 * time.Millisecond)

	second, err := v.Now("Etc/UTC")
	if err != nil {
		t.Fatalf("Now returned an error: %v", err)
	}

	elapsedLogical := second.Sub(first)
	// Logical time must advance at 1x real time regardless of speedup, so
	// ~20ms of sleeping should produce ~20ms of logical advance, not ~2s.
	if elapsedLogical < 10*time.Millisecond || elapsedLogical > 200*time.Millisecond {
		t.Errorf("logical elapsed = %v, want roughly the real sleep duration, unscaled", elapsedLogical)
	}
}

func TestVirtualSpeedupDefaultsToOneWhenInvalid(t *testing.T) {
	cases := []float64{0, -1, -100}
	for _, s := range cases {
		v := NewVirtual(time.Now(), s)
		if got := v.Speedup(); got != 1 {
			t.Errorf("Speedup() with configured %v = %v, want 1", s, got)
		}
	}
}

func TestVirtualSpeedupPassthrough(t *testing.T) {
	v := NewVirtual(time.Now(), 86400)
	if got := v.Speedup(); got != 86400 {
		t.Errorf("Speedup() = %v, want 86400", got)
	}
}

func TestVirtualNowRejectsBadTimezone(t *testing.T) {
	v := NewVirtual(time.Now(), 1)
	if _, err := v.Now("Not/A/Zone"); err == nil {
		t.Fatal("expected an error for an invalid timezone")
	}
}

func TestVirtualSpeedupAffectsOnlyRealDelay(t *testing.T) {
	// 1 hour of raw schedule delay under 3600x speedup should collapse to a
	// ~1 second real sleep, independent of how Now() itself advances.
	v := NewVirtual(time.Now(), 3600)
	rawMs := int64(time.Hour / time.Millisecond)
	got := RealDelayMillis(rawMs, v)
	want := int64(1000)
	if got != want {
		t.Errorf("RealDelayMillis(1h, 3600x) = %d, want %d", got, want)
	}
}
