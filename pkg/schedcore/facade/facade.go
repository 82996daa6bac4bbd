// Package facade exposes the run_at/run_in/run_every/run_job/update_job/
// cancel operations on top of pkg/schedcore/activity, plus an in-memory
// name registry so jobs can be looked up and reconfigured by name.
package facade

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jholhewres/schedcore/pkg/schedcore/activity"
	"github.com/jholhewres/schedcore/pkg/schedcore/clock"
	"github.com/jholhewres/schedcore/pkg/schedcore/cronparse"
	"github.com/jholhewres/schedcore/pkg/schedcore/schedule"
)

// ErrInvalidRepeat is returned when a caller-supplied repeat value is
// neither false, true, nor a non-negative integer.
var ErrInvalidRepeat = errors.New("facade: invalid repeat value")

// ErrUnknownJob is returned by UpdateJob/Cancel-by-name when no activity is
// registered under the given name.
var ErrUnknownJob = errors.New("facade: unknown job name")

// ErrInvalidCron is re-exported from cronparse for callers that only import
// facade.
var ErrInvalidCron = cronparse.ErrInvalidCron

// Delay is the (value, unit) or raw-millisecond shape run_in accepts.
type Delay struct {
	Millis int64
	Value  int64
	Unit   schedule.Unit
}

// DelayMillis builds a Delay from a raw millisecond count.
func DelayMillis(n int64) Delay { return Delay{Millis: n} }

// DelayOf builds a Delay from a (value, unit) pair.
func DelayOf(value int64, unit schedule.Unit) Delay { return Delay{Value: value, Unit: unit} }

func (d Delay) toSchedule() schedule.Schedule {
	if d.Unit == "" {
		return schedule.Millis(d.Millis)
	}
	return schedule.Delay{Value: d.Value, Unit: d.Unit}
}

// Repeat is the recognized repeat option: false, true, or a non-negative
// integer, mirroring the `repeat` option key's three legal shapes.
type Repeat struct {
	kind repeatKind
	n    int64
}

type repeatKind int

const (
	repeatBool repeatKind = iota
	repeatInt
)

// RepeatFalse is the one-shot repeat value.
func RepeatFalse() Repeat { return Repeat{kind: repeatBool, n: 0} }

// RepeatTrue is the unbounded repeat value.
func RepeatTrue() Repeat { return Repeat{kind: repeatBool, n: 1} }

// RepeatCount is a non-negative integer repeat budget.
func RepeatCount(n int64) (Repeat, error) {
	if n < 0 {
		return Repeat{}, fmt.Errorf("%w: %d", ErrInvalidRepeat, n)
	}
	return Repeat{kind: repeatInt, n: n}, nil
}

func (r Repeat) toActivityRepeat() activity.Repeat {
	switch r.kind {
	case repeatInt:
		return activity.RepeatN(r.n)
	default:
		if r.n != 0 {
			return activity.RepeatForever()
		}
		return activity.RepeatNever()
	}
}

// Options carries every recognized option key: the façade splits these
// into job-level options (interpreted by the evaluator/activity) and
// activity-level test options (start time, injected clock).
type Options struct {
	Name                    string
	NonexistentTimeStrategy schedule.NonexistentTimeStrategy
	Repeat                  *Repeat // nil means "use the operation's default"
	Timezone                string
	Overlap                 bool
	Context                 any
	RunOnce                 bool

	StartTime time.Time
	TimeScale clock.TimeScale
}

func (o Options) scheduleOptions() schedule.Options {
	return schedule.Options{
		Timezone:                o.Timezone,
		NonexistentTimeStrategy: o.NonexistentTimeStrategy,
	}
}

func (o Options) jobOptions(defaultRepeat Repeat) activity.Options {
	repeat := defaultRepeat
	if o.Repeat != nil {
		repeat = *o.Repeat
	}
	return activity.Options{
		Options: o.scheduleOptions(),
		Overlap: o.Overlap,
		Repeat:  repeat.toActivityRepeat(),
		RunOnce: o.RunOnce,
	}
}

func (o Options) testOptions() activity.TestOptions {
	return activity.TestOptions{
		StartTime: o.StartTime,
		TimeScale: o.TimeScale,
	}
}

func (o Options) resolvedScale() clock.TimeScale {
	if o.TimeScale != nil {
		return o.TimeScale
	}
	return clock.Real{}
}

// Registry is a name -> activity lookup table, guarded for concurrent use by
// multiple callers issuing run_*/update_job/cancel operations.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*activity.Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*activity.Handle)}
}

func (r *Registry) put(name string, h *activity.Handle) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[name] = h
}

// Lookup returns the activity registered under name, if any.
func (r *Registry) Lookup(name string) (*activity.Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[name]
	return h, ok
}

// reap removes name from the registry once its activity's Done() channel
// closes, so stale names don't linger after a job terminates.
func (r *Registry) reap(name string, h *activity.Handle) {
	if name == "" {
		return
	}
	go func() {
		<-h.Done()
		r.mu.Lock()
		if r.handles[name] == h {
			delete(r.handles, name)
		}
		r.mu.Unlock()
	}()
}

// RunAt schedules task to fire once at instant, relative to now().
func (r *Registry) RunAt(task activity.Task, instant time.Time, opts Options) (*activity.Handle, error) {
	now, err := opts.resolvedScale().Now(opts.scheduleOptions().ResolvedTimezone())
	if err != nil {
		return nil, fmt.Errorf("facade: resolving now for run_at: %w", err)
	}
	delayMs := instant.Sub(now).Milliseconds()
	return r.RunIn(task, DelayMillis(delayMs), opts)
}

// RunIn schedules task to fire once after delay. repeat defaults to 1.
func (r *Registry) RunIn(task activity.Task, delay Delay, opts Options) (*activity.Handle, error) {
	one, err := RepeatCount(1)
	if err != nil {
		return nil, err
	}
	job := activity.Job{
		Name:     opts.Name,
		Task:     task,
		Schedule: delay.toSchedule(),
		Context:  opts.Context,
		Options:  opts.jobOptions(one),
	}
	return r.start(job, opts)
}

// RunEvery schedules task on a cron schedule. repeat defaults to true.
// cronExpr is parsed here with cronparse.Parse: more than 5 whitespace fields
// means extended syntax (6 adds a leading seconds field, 7 also a trailing
// year).
func (r *Registry) RunEvery(task activity.Task, cronExpr string, opts Options) (*activity.Handle, error) {
	ast, err := cronparse.Parse(cronExpr)
	if err != nil {
		return nil, err
	}
	job := activity.Job{
		Name:     opts.Name,
		Task:     task,
		Schedule: schedule.CronSchedule{AST: ast},
		Context:  opts.Context,
		Options:  opts.jobOptions(RepeatTrue()),
	}
	return r.start(job, opts)
}

// RunJob is the direct entry point: the caller supplies a fully-formed Job.
// repeat defaults to true.
func (r *Registry) RunJob(job activity.Job, opts Options) (*activity.Handle, error) {
	if opts.Repeat == nil {
		job.Options.Repeat = RepeatTrue().toActivityRepeat()
	}
	return r.start(job, opts)
}

// start assigns every unnamed job a generated name, so it is always
// reachable through the registry even when the caller didn't supply one.
func (r *Registry) start(job activity.Job, opts Options) (*activity.Handle, error) {
	if job.Name == "" {
		job.Name = uuid.NewString()
	}
	h, err := activity.Start(job, opts.testOptions())
	if err != nil {
		return nil, err
	}
	r.put(job.Name, h)
	r.reap(job.Name, h)
	return h, nil
}

// UpdateJob sends RECONFIG to the activity registered under job.Name.
// repeat defaults to true.
func (r *Registry) UpdateJob(job activity.Job, opts Options) error {
	if job.Name == "" {
		return fmt.Errorf("%w: job has no name", ErrUnknownJob)
	}
	h, ok := r.Lookup(job.Name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, job.Name)
	}
	if opts.Repeat == nil {
		job.Options.Repeat = RepeatTrue().toActivityRepeat()
	}
	return h.Reconfigure(job, opts.testOptions())
}

// Cancel sends CANCEL to the given activity handle.
func Cancel(h *activity.Handle) {
	h.Cancel()
}

// CancelByName looks up a registered activity by name and cancels it.
func (r *Registry) CancelByName(name string) error {
	h, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownJob, name)
	}
	h.Cancel()
	return nil
}
