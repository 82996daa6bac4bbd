// Package schedule implements the schedule evaluator: a pure function that,
// given a reference instant and a schedule, returns the next firing instant
// and the real delay to wait. It owns cron and DST policy; it never parses a
// cron string itself — it only ever consumes a CronAST value handed to it by
// a parser capability (pkg/schedcore/cronparse).
package schedule

import "time"

// Schedule is the tagged union of the schedule kinds a job can carry: Delay,
// CronSchedule, and Millis (sugar, normalized to Delay at construction).
type Schedule interface {
	isSchedule()
}

// Unit is a canonical delay unit.
type Unit string

const (
	Milliseconds Unit = "ms"
	Seconds      Unit = "s"
	Minutes      Unit = "m"
	Hours        Unit = "h"
	Days         Unit = "d"
	Weeks        Unit = "w"
)

// Delay is a one-shot-or-repeating "fire N units from the reference instant"
// schedule.
type Delay struct {
	Value int64
	Unit  Unit
}

func (Delay) isSchedule() {}

// Millis is sugar accepted on construction; it is normalized to Delay(n, ms)
// immediately, so the rest of the system only ever sees a Delay.
func Millis(n int64) Delay {
	return Delay{Value: n, Unit: Milliseconds}
}

// CronSchedule wraps a pre-parsed cron capability: "give me the next run
// instant at or after a naive local time".
type CronSchedule struct {
	AST CronAST
}

func (CronSchedule) isSchedule() {}

// CronAST is the external cron-parsing capability's output. Implementations
// live in pkg/schedcore/cronparse; the schedule evaluator only calls Next.
type CronAST interface {
	// Next returns the next match at or after the given naive local time,
	// or the zero time when there is none. The returned time carries no
	// timezone meaning beyond its wall-clock fields — the evaluator is
	// responsible for all timezone re-localization.
	Next(naiveLocal time.Time) time.Time
}

// NonexistentTimeStrategy is the spring-forward DST-gap policy.
type NonexistentTimeStrategy string

const (
	StrategySkip   NonexistentTimeStrategy = "skip"
	StrategyAdjust NonexistentTimeStrategy = "adjust"
)

// DefaultNonexistentStrategy is used when Options.NonexistentTimeStrategy is
// the zero value. "skip" was chosen as the conservative default — see
// DESIGN.md Open Question 1.
const DefaultNonexistentStrategy = StrategySkip

// Options carries the evaluator-relevant subset of a job's configuration.
type Options struct {
	// Timezone is the IANA zone string used to interpret cron schedules.
	// Empty means "Etc/UTC"; the literal "utc" is a deprecated alias for
	// "Etc/UTC".
	Timezone string
	// NonexistentTimeStrategy governs spring-forward DST gaps for cron
	// schedules. Zero value means DefaultNonexistentStrategy.
	NonexistentTimeStrategy NonexistentTimeStrategy
}

// ResolvedTimezone normalizes the configured timezone.
func (o Options) ResolvedTimezone() string {
	switch o.Timezone {
	case "":
		return "Etc/UTC"
	case "utc":
		return "Etc/UTC"
	default:
		return o.Timezone
	}
}

// ResolvedStrategy normalizes the configured gap strategy.
func (o Options) ResolvedStrategy() NonexistentTimeStrategy {
	if o.NonexistentTimeStrategy == "" {
		return DefaultNonexistentStrategy
	}
	return o.NonexistentTimeStrategy
}

// Result is the output of NextFire: the next firing instant (logical) and
// the real delay, in milliseconds, an activity should actually sleep.
type Result struct {
	NextInstant time.Time
	RealDelayMs int64
}
