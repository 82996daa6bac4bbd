package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/jholhewres/schedcore/pkg/schedcore/clock"
)

// fixedAST always returns the same instant, regardless of what it's asked
// to resolve after — enough to drive the evaluator's DST/timezone handling
// without depending on cronparse.
type fixedAST struct {
	next time.Time
}

func (f fixedAST) Next(time.Time) time.Time { return f.next }

// exhaustedAST mimics a cron expression with no further matches.
type exhaustedAST struct{}

func (exhaustedAST) Next(time.Time) time.Time { return time.Time{} }

func TestNextFireDelay(t *testing.T) {
	from := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	result, err := NextFire(from, Millis(1500), Options{}, clock.Real{})
	if err != nil {
		t.Fatalf("NextFire returned an error: %v", err)
	}
	want := from.Add(1500 * time.Millisecond)
	if !result.NextInstant.Equal(want) {
		t.Errorf("NextInstant = %v, want %v", result.NextInstant, want)
	}
	if result.RealDelayMs != 1500 {
		t.Errorf("RealDelayMs = %d, want 1500", result.RealDelayMs)
	}
}

func TestNextFireDelayAppliesSpeedup(t *testing.T) {
	from := time.Now()
	v := clock.NewVirtual(from, 10)
	result, err := NextFire(from, Millis(1000), Options{}, v)
	if err != nil {
		t.Fatalf("NextFire returned an error: %v", err)
	}
	if result.RealDelayMs != 100 {
		t.Errorf("RealDelayMs = %d, want 100", result.RealDelayMs)
	}
}

func TestNextFireDelayRejectsUnknownUnit(t *testing.T) {
	_, err := NextFire(time.Now(), Delay{Value: 1, Unit: "fortnight"}, Options{}, clock.Real{})
	if !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("NextFire with unknown unit = %v, want ErrUnknownUnit", err)
	}
}

func TestNextFireCronIgnoresFromAndUsesScaleNow(t *testing.T) {
	scaleNow := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	// A frozen scale, so the delay is exact: a Virtual clock keeps moving with
	// real time and would shave a millisecond off the truncated delay.
	v := frozenScale{now: scaleNow}
	target := scaleNow.Add(5 * time.Minute)
	ast := fixedAST{next: time.Date(target.Year(), target.Month(), target.Day(), target.Hour(), target.Minute(), target.Second(), 0, time.UTC)}

	// from is deliberately far from scaleNow to confirm it's ignored for cron.
	from := scaleNow.Add(-72 * time.Hour)
	result, err := NextFire(from, CronSchedule{AST: ast}, Options{Timezone: "Etc/UTC"}, v)
	if err != nil {
		t.Fatalf("NextFire returned an error: %v", err)
	}
	if result.RealDelayMs != 5*60*1000 {
		t.Errorf("RealDelayMs = %d, want %d", result.RealDelayMs, 5*60*1000)
	}
}

func TestNextFireCronNoFutureMatch(t *testing.T) {
	_, err := NextFire(time.Now(), CronSchedule{AST: exhaustedAST{}}, Options{}, clock.Real{})
	if !errors.Is(err, ErrNoFutureMatch) {
		t.Errorf("NextFire with exhausted AST = %v, want ErrNoFutureMatch", err)
	}
}

func TestNextFireCronInvalidTimezone(t *testing.T) {
	_, err := NextFire(time.Now(), CronSchedule{AST: fixedAST{}}, Options{Timezone: "Not/A/Zone"}, clock.Real{})
	if !errors.Is(err, ErrTimezone) {
		t.Errorf("NextFire with bad timezone = %v, want ErrTimezone", err)
	}
}

func TestNextFireUnsupportedScheduleType(t *testing.T) {
	_, err := NextFire(time.Now(), unsupportedSchedule{}, Options{}, clock.Real{})
	if err == nil {
		t.Fatal("expected an error for an unsupported schedule type")
	}
}

// frozenScale is a TimeScale whose Now never advances.
type frozenScale struct{ now time.Time }

func (f frozenScale) Now(tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return f.now.In(loc), nil
}

func (frozenScale) Speedup() float64 { return 1 }

type unsupportedSchedule struct{}

func (unsupportedSchedule) isSchedule() {}
