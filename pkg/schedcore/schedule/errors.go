package schedule

import "errors"

// ErrUnknownUnit is returned when a Delay schedule names a unit outside the
// canonical table.
var ErrUnknownUnit = errors.New("schedule: unknown delay unit")

// ErrNoFutureMatch is returned when a cron schedule has no future
// occurrence. This is not a crash — callers treat it as a normal-
// termination trigger for the activity owning the schedule.
var ErrNoFutureMatch = errors.New("schedule: cron has no future match")

// ErrTimezone is returned when the configured IANA timezone cannot be
// loaded. Callers treat this identically to a cron evaluation error.
var ErrTimezone = errors.New("schedule: invalid timezone")
