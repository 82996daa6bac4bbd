package schedule

import (
	"fmt"
	"time"

	"github.com/jholhewres/schedcore/pkg/schedcore/clock"
)

// NextFire is the pure schedule evaluator: given a reference instant, a
// schedule, and timezone/DST options, it returns the next firing instant and
// the real delay (after speedup) an activity should sleep before firing.
//
// For Delay schedules, from is the reference instant the delay is added to.
// For cron schedules, from is not used to compute the match — cron always
// resolves against the TimeScale's actual "now"; from only matters for
// Delay/Millis schedules.
func NextFire(from time.Time, sched Schedule, opts Options, scale clock.TimeScale) (Result, error) {
	switch s := sched.(type) {
	case Delay:
		return nextFireDelay(from, s, scale)
	case CronSchedule:
		return nextFireCron(s, opts, scale)
	default:
		return Result{}, fmt.Errorf("schedule: unsupported schedule type %T", sched)
	}
}

func nextFireDelay(from time.Time, d Delay, scale clock.TimeScale) (Result, error) {
	rawMs, err := millisPerUnit(d.Value, d.Unit)
	if err != nil {
		return Result{}, err
	}
	next := from.Add(time.Duration(rawMs) * time.Millisecond)
	return Result{
		NextInstant: next,
		RealDelayMs: clock.RealDelayMillis(rawMs, scale),
	}, nil
}

func nextFireCron(s CronSchedule, opts Options, scale clock.TimeScale) (Result, error) {
	tzName := opts.ResolvedTimezone()
	now, err := scale.Now(tzName)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrTimezone, err)
	}
	loc := now.Location()

	instant, err := cronNextInstant(now, s.AST, loc, opts, 0)
	if err != nil {
		return Result{}, err
	}

	rawMs := instant.Sub(now).Milliseconds()
	if rawMs < 0 {
		rawMs = 0
	}
	return Result{
		NextInstant: instant,
		RealDelayMs: clock.RealDelayMillis(rawMs, scale),
	}, nil
}

// maxGapRecursion bounds the "skip" strategy's recursion against a
// pathological cron/timezone combination that hits a DST gap every match;
// it is not expected to be reached in practice (real DST gaps are at most a
// couple of times a year per zone).
const maxGapRecursion = 16

// cronNextInstant resolves the next cron occurrence at or after
// referenceNaiveLocal, handling DST ambiguity/gaps. It never re-reads the
// TimeScale — the "skip" strategy recurses using the computed
// just-after-gap instant as the new reference, so that the real_delay_ms in
// nextFireCron is always measured from the one original "now" reading.
func cronNextInstant(referenceNaiveLocal time.Time, ast CronAST, loc *time.Location, opts Options, depth int) (time.Time, error) {
	nextNaive := ast.Next(referenceNaiveLocal)
	if nextNaive.IsZero() {
		return time.Time{}, ErrNoFutureMatch
	}

	y, mo, d := nextNaive.Date()
	hh, mm, ss := nextNaive.Clock()

	res := resolveLocal(loc, y, mo, d, hh, mm, ss)

	switch res.kind {
	case localUnambiguous:
		return res.instant, nil
	case localAmbiguous:
		// On a fall-back overlap, pick the second (later UTC) occurrence.
		return res.later, nil
	case localGap:
		switch opts.ResolvedStrategy() {
		case StrategyAdjust:
			return adjustForGap(loc, y, mo, d, hh, mm, ss), nil
		default: // skip
			if depth >= maxGapRecursion {
				return time.Time{}, fmt.Errorf("%w: exceeded %d consecutive DST gaps", ErrNoFutureMatch, maxGapRecursion)
			}
			return cronNextInstant(res.justAfterGap, ast, loc, opts, depth+1)
		}
	default:
		return time.Time{}, fmt.Errorf("schedule: unreachable local resolution kind %d", res.kind)
	}
}
