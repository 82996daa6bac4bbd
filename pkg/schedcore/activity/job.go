// Package activity implements the job activity: a single goroutine per job
// that owns a timer, a mailbox, and a stats accumulator, and runs the
// task-fire-reschedule loop until cancelled, exhausted, or it errors out.
package activity

import (
	"time"

	"github.com/jholhewres/schedcore/pkg/schedcore/clock"
	"github.com/jholhewres/schedcore/pkg/schedcore/schedule"
)

// Task is the invocable body of a job. Arity-0 and arity-1 user tasks are
// both normalized to this shape upstream (pkg/schedcore/mfa, or directly by
// a caller that only needs the fire instant sometimes); Task always receives
// the scheduled instant, and implementations that don't care are free to
// ignore it.
type Task func(scheduledAt time.Time)

// Repeat is the closed tagged type for a job's repeat budget. The zero value
// equals RepeatNever(); build values with the constructors below.
type Repeat struct {
	kind  repeatKind
	count int64
}

type repeatKind int

const (
	repeatFalse repeatKind = iota
	repeatTrue
	repeatN
)

// RepeatNever means "false": fire at most once (the Bootstrap run_once fire,
// or a single ScheduleNext fire), then terminate.
func RepeatNever() Repeat { return Repeat{kind: repeatFalse} }

// RepeatForever means "true": unbounded repeats.
func RepeatForever() Repeat { return Repeat{kind: repeatTrue} }

// RepeatN schedules up to n firings; n <= 0 behaves like RepeatNever.
func RepeatN(n int64) Repeat {
	if n <= 0 {
		return RepeatNever()
	}
	return Repeat{kind: repeatN, count: n}
}

// exhausted reports whether the current budget forbids scheduling another
// fire, without mutating it.
func (r Repeat) exhausted() bool {
	switch r.kind {
	case repeatFalse:
		return true
	case repeatN:
		return r.count <= 0
	default:
		return false
	}
}

// decremented returns the budget after one fire is scheduled. Only integer
// budgets decrement; true stays true.
func (r Repeat) decremented() Repeat {
	if r.kind == repeatN {
		return Repeat{kind: repeatN, count: r.count - 1}
	}
	return r
}

// Options is the recognized subset of a job's configuration the activity
// interprets directly (see schedule.Options for the evaluator's subset,
// which this embeds).
type Options struct {
	schedule.Options

	// Overlap is carried on the job but the activity does not read it: with
	// either value the next fire is computed the same way after a task
	// returns, and only one task body runs at a time.
	Overlap bool
	// Repeat is the firing budget.
	Repeat Repeat
	// RunOnce, if true, fires the task once at activity start (using
	// StartTime as the scheduled instant) before entering the normal loop.
	RunOnce bool
}

// TestOptions carries activity-level test hooks: an alternate start time and
// an injectable TimeScale. Both are optional; nil/zero means "use real time".
type TestOptions struct {
	StartTime time.Time
	TimeScale clock.TimeScale
}

func (t TestOptions) resolvedScale() clock.TimeScale {
	if t.TimeScale != nil {
		return t.TimeScale
	}
	return clock.Real{}
}

// Job is the immutable-except-under-reconfigure descriptor an activity owns.
type Job struct {
	Name     string
	Task     Task
	Schedule schedule.Schedule
	Context  any
	Options  Options
}
