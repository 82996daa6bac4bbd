package clock

import (
	"fmt"
	"time"
)

// Virtual is the test TimeScale. Logical time — what Now() reports — always
// advances at the natural (1x) rate from a fixed, injected StartTime.
// SpeedupFactor only shrinks the real delay an activity actually sleeps
// before firing (see clock.RealDelayMillis); the instant passed to a task
// is always the fully-computed scheduled instant, never a raw Now() reading.
type Virtual struct {
	// StartTime is the instant Now() reports at construction.
	StartTime time.Time
	// SpeedupFactor divides every real delay an activity waits on. Must be
	// a finite positive number; Speedup() falls back to 1 otherwise.
	SpeedupFactor float64

	// wallStart anchors StartTime to a real wall-clock reading so repeated
	// Now() calls advance logical time by the same amount of real time that
	// has actually elapsed — unscaled.
	wallStart time.Time
}

// NewVirtual builds a Virtual clock anchored at startTime with the given
// speedup. wallStart is captured once, at construction — this is a plain
// value, not a package-level singleton, so concurrent tests never share or
// reset global clock state.
func NewVirtual(startTime time.Time, speedup float64) *Virtual {
	if speedup <= 0 {
		speedup = 1
	}
	return &Virtual{
		StartTime:     startTime,
		SpeedupFactor: speedup,
		wallStart:     time.Now(),
	}
}

// Now returns StartTime advanced by the real elapsed wall-clock time since
// construction, unscaled, converted to the requested timezone.
func (v *Virtual) Now(timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("loading timezone %q: %w", timezone, err)
	}
	elapsedReal := time.Since(v.wallStart)
	return v.StartTime.Add(elapsedReal).In(loc), nil
}

// Speedup returns the configured speedup factor (never <= 0).
func (v *Virtual) Speedup() float64 {
	if v.SpeedupFactor <= 0 {
		return 1
	}
	return v.SpeedupFactor
}
