// Package mfa normalizes a module/function/argument-list call shape into a
// one-argument activity.Task closure, substituting a magic sentinel value
// with the instant the activity fires at.
package mfa

import (
	"time"

	"github.com/jholhewres/schedcore/pkg/schedcore/activity"
)

// SchedExScheduledTime and FledexSchedulerScheduledTime are the two sentinel
// markers accepted for backward compatibility; both are replaced by the
// firing instant wherever they appear, by equality only — never by
// substring matching inside a nested structure.
type sentinel string

const (
	SchedExScheduledTime         sentinel = ":sched_ex_scheduled_time"
	FledexSchedulerScheduledTime sentinel = ":fledex_scheduler_scheduled_time"
)

func isSentinel(v any) bool {
	s, ok := v.(sentinel)
	if !ok {
		return false
	}
	return s == SchedExScheduledTime || s == FledexSchedulerScheduledTime
}

// Func is the target of an m/f/a call: module and function are opaque labels
// used only for logging/identification; Call does the actual invocation.
type Func struct {
	Module string
	Name   string
	Call   func(args []any)
}

// Closure builds an activity.Task from a Func and an argument list. Any
// argument equal to a sentinel marker is replaced, at fire time, by the
// scheduled instant before the call, converted via toArg.
//
// toArg controls how the time.Time is represented in the substituted
// position (e.g. wrapped in a domain-specific instant type); callers that
// just want the raw time.Time can pass an identity function.
func Closure(fn Func, args []any, toArg func(time.Time) any) activity.Task {
	template := make([]any, len(args))
	copy(template, args)

	return func(scheduledAt time.Time) {
		substituted := make([]any, len(template))
		for i, a := range template {
			if isSentinel(a) {
				substituted[i] = toArg(scheduledAt)
				continue
			}
			substituted[i] = a
		}
		fn.Call(substituted)
	}
}
