package activity

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jholhewres/schedcore/pkg/schedcore/clock"
	"github.com/jholhewres/schedcore/pkg/schedcore/schedule"
	"github.com/jholhewres/schedcore/pkg/schedcore/stats"
)

// ErrTerminated is returned by Handle operations issued against an activity
// that has already stopped.
var ErrTerminated = errors.New("activity: already terminated")

type commandKind int

const (
	cmdCancel commandKind = iota
	cmdReconfig
)

type command struct {
	kind     commandKind
	job      Job
	testOpts TestOptions
	reply    chan error
}

// Handle is the caller-facing reference to a running (or just-stopped)
// activity: one goroutine, one mailbox, one timer, one stats accumulator.
// All state reachable from the outside is guarded by mu; the owning
// goroutine is the sole writer.
type Handle struct {
	name string

	cmdCh  chan command
	doneCh chan struct{}

	mu                   sync.RWMutex
	scheduledAt          time.Time
	quantizedScheduledAt time.Time
	delayMs              int64
	armed                bool
	stats                stats.Stats
	taskErr              error
}

// Name returns the job name the activity was started with (may be empty).
func (h *Handle) Name() string { return h.name }

// Done returns a channel that is closed when the activity terminates, for
// any reason: normal exhaustion, cancel, schedule error, or a panicking
// task.
func (h *Handle) Done() <-chan struct{} { return h.doneCh }

// NextSchedule reports the most recently armed fire: the logical instant it
// represents, its wall-clock projection, and the remaining real delay in
// milliseconds. ok is false once the activity has terminated — no schedule
// is pending.
func (h *Handle) NextSchedule() (scheduledAt, quantizedScheduledAt time.Time, delayMs int64, ok bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.armed {
		return time.Time{}, time.Time{}, 0, false
	}
	return h.scheduledAt, h.quantizedScheduledAt, h.delayMs, true
}

// Stats returns a snapshot of the three rolling aggregates.
func (h *Handle) Stats() map[stats.Metric]stats.Snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stats.All()
}

// Err returns the task_exception that terminated this activity abnormally,
// or nil if it terminated normally (or is still running). A supervising
// host should check this after Done() closes and decide whether to restart
// the job.
func (h *Handle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.taskErr
}

// Cancel sends CANCEL unconditionally. It is safe to call more than once:
// every call after the activity has stopped is a no-op.
func (h *Handle) Cancel() {
	select {
	case <-h.doneCh:
		return
	default:
	}
	select {
	case h.cmdCh <- command{kind: cmdCancel}:
	case <-h.doneCh:
	}
}

// Reconfigure sends RECONFIG(job', opts'), swapping the live descriptor. It
// blocks until the activity has processed the request — only possible while
// Armed, so a reconfigure issued mid-firing waits for the task to return —
// and returns the resulting schedule_error, if any, or ErrTerminated if the
// activity had already stopped.
func (h *Handle) Reconfigure(job Job, testOpts TestOptions) error {
	reply := make(chan error, 1)
	select {
	case h.cmdCh <- command{kind: cmdReconfig, job: job, testOpts: testOpts, reply: reply}:
	case <-h.doneCh:
		return ErrTerminated
	}
	select {
	case err := <-reply:
		return err
	case <-h.doneCh:
		// The activity may have replied and then stopped; its reply wins.
		select {
		case err := <-reply:
			return err
		default:
			return ErrTerminated
		}
	}
}

func (h *Handle) recordSchedule(scheduledAt, quantizedScheduledAt time.Time, delayMs int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.scheduledAt = scheduledAt
	h.quantizedScheduledAt = quantizedScheduledAt
	h.delayMs = delayMs
	h.armed = true
}

func (h *Handle) recordFiring(scheduledAt, quantizedScheduledAt, actualStart, actualEnd time.Time) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stats.Update(scheduledAt, quantizedScheduledAt, actualStart, actualEnd)
}

func (h *Handle) recordTerminated() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.armed = false
}

func (h *Handle) recordTaskPanic(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.taskErr = err
}

// Start constructs and runs a new activity: Init seeds scheduledAt from
// TestOptions.StartTime (or now()), Bootstrap fires the task immediately if
// RunOnce is set, then ScheduleNext arms the first timer. The initial
// outcome — success (armed, or already terminated by an exhausted repeat
// budget) or a schedule_error — is reported synchronously: cron/timezone
// failures during initial scheduling are surfaced to the caller, while
// every later reschedule failure only ends the activity silently.
func Start(job Job, testOpts TestOptions) (*Handle, error) {
	scale := testOpts.resolvedScale()

	h := &Handle{
		name:   job.Name,
		cmdCh:  make(chan command),
		doneCh: make(chan struct{}),
	}

	ready := make(chan error, 1)
	go run(h, job, testOpts, scale, ready)

	if err := <-ready; err != nil {
		return nil, err
	}
	return h, nil
}

// loopState is the mutable state the goroutine in run carries across
// iterations: current descriptor, clock, and the logical position the
// schedule evaluator advances from.
type loopState struct {
	job                  Job
	scale                clock.TimeScale
	tz                   string
	scheduledAt          time.Time
	quantizedScheduledAt time.Time

	// pendingScheduledAt/pendingQuantizedAt hold the instant armNext just
	// computed, for the caller to adopt once the armed timer actually fires.
	pendingScheduledAt time.Time
	pendingQuantizedAt time.Time
}

// fireBootstrap runs the task once at the Bootstrap state if RunOnce is set.
// A panicking task here is recorded on the handle and reported by returning
// false.
func (s *loopState) fireBootstrap(h *Handle) bool {
	if !s.job.Options.RunOnce {
		return true
	}
	actualStart := activityNow(s.scale, s.tz)
	panicErr := invoke(s.job.Task, s.scheduledAt)
	actualEnd := activityNow(s.scale, s.tz)
	h.recordFiring(s.scheduledAt, s.quantizedScheduledAt, actualStart, actualEnd)
	if panicErr != nil {
		h.recordTaskPanic(panicErr)
		return false
	}
	return true
}

// armNext runs ScheduleNext: evaluates the repeat budget, asks the schedule
// evaluator for the next instant, and records it on the handle. terminated
// is true when the budget forbids any further fire (a normal stop, not an
// error).
func (s *loopState) armNext(h *Handle) (timer *time.Timer, terminated bool, err error) {
	if s.job.Options.Repeat.exhausted() {
		return nil, true, nil
	}
	s.job.Options.Repeat = s.job.Options.Repeat.decremented()

	result, err := schedule.NextFire(s.scheduledAt, s.job.Schedule, s.job.Options.Options, s.scale)
	if err != nil {
		return nil, false, err
	}

	quantized := activityNow(s.scale, s.tz).Add(time.Duration(result.RealDelayMs) * time.Millisecond)
	h.recordSchedule(result.NextInstant, quantized, result.RealDelayMs)

	s.pendingScheduledAt = result.NextInstant
	s.pendingQuantizedAt = quantized
	return time.NewTimer(time.Duration(result.RealDelayMs) * time.Millisecond), false, nil
}

func run(h *Handle, job Job, testOpts TestOptions, scale clock.TimeScale, ready chan<- error) {
	defer close(h.doneCh)
	defer h.recordTerminated()

	s := &loopState{
		job:   job,
		scale: scale,
		tz:    job.Options.ResolvedTimezone(),
	}

	startTime := testOpts.StartTime
	if startTime.IsZero() {
		now, err := scale.Now(s.tz)
		if err != nil {
			ready <- fmt.Errorf("activity: resolving start time: %w", err)
			return
		}
		startTime = now
	}
	s.scheduledAt = startTime
	s.quantizedScheduledAt = startTime

	if !s.fireBootstrap(h) {
		ready <- nil
		return
	}

	timer, terminated, err := s.armNext(h)
	if terminated {
		ready <- nil
		return
	}
	if err != nil {
		ready <- err
		return
	}
	ready <- nil

	for {
		select {
		case <-timer.C:
			s.scheduledAt = s.pendingScheduledAt
			s.quantizedScheduledAt = s.pendingQuantizedAt
			actualStart := activityNow(s.scale, s.tz)
			panicErr := invoke(s.job.Task, s.scheduledAt)
			actualEnd := activityNow(s.scale, s.tz)
			h.recordFiring(s.scheduledAt, s.quantizedScheduledAt, actualStart, actualEnd)
			if panicErr != nil {
				h.recordTaskPanic(panicErr)
				return
			}

			timer, terminated, err = s.armNext(h)
			if terminated {
				return
			}
			if err != nil {
				return
			}

		case cmd := <-h.cmdCh:
			stopTimer(timer)
			switch cmd.kind {
			case cmdCancel:
				return

			case cmdReconfig:
				s.job = cmd.job
				if cmd.testOpts.TimeScale != nil {
					s.scale = cmd.testOpts.TimeScale
				}
				s.tz = s.job.Options.ResolvedTimezone()
				if !cmd.testOpts.StartTime.IsZero() {
					s.scheduledAt = cmd.testOpts.StartTime
				} else if now, err := s.scale.Now(s.tz); err == nil {
					s.scheduledAt = now
				}
				s.quantizedScheduledAt = s.scheduledAt

				if !s.fireBootstrap(h) {
					cmd.reply <- nil
					return
				}

				timer, terminated, err = s.armNext(h)
				if terminated {
					cmd.reply <- nil
					return
				}
				if err != nil {
					cmd.reply <- err
					return
				}
				cmd.reply <- nil
			}
		}
	}
}

func activityNow(scale clock.TimeScale, tz string) time.Time {
	t, err := scale.Now(tz)
	if err != nil {
		return time.Now().UTC()
	}
	return t
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

// invoke runs the task body, recovering a panic into a returned error so a
// single bad job can terminate only its own activity (task_exception)
// instead of crashing the whole process. The scheduler itself never
// retries a task failure — the caller of invoke terminates the activity
// and leaves supervision/restart to the host, which observes the failure
// via Handle.Err() once Done() closes.
func invoke(task Task, scheduledAt time.Time) (panicErr error) {
	defer func() {
		if r := recover(); r != nil {
			panicErr = fmt.Errorf("activity: task panicked: %v", r)
		}
	}()
	task(scheduledAt)
	return nil
}
