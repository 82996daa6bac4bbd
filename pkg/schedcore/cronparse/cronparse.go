// Package cronparse wraps robfig/cron/v3 for the six
// second/minute/hour/dom/month/dow fields, and layers a year-set matcher on
// top for an optional 7th (year) field that no cron library supports
// natively.
package cronparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/jholhewres/schedcore/pkg/schedcore/schedule"
)

// ErrInvalidCron is returned when a cron string cannot be parsed.
var ErrInvalidCron = fmt.Errorf("cronparse: invalid cron expression")

// standardParser accepts 5-field cron plus @-descriptors ("@daily",
// "@every 5m", ...).
var standardParser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// extendedParser accepts the 6 non-year fields of a 7-field extended cron
// expression (second-prefixed).
var extendedParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ast adapts a robfig/cron Schedule (and an optional year filter) to
// schedule.CronAST.
type ast struct {
	inner cron.Schedule
	years yearSet
}

// Next implements schedule.CronAST. It returns the next match at or after
// naiveLocal by asking robfig/cron — whose Next is strictly-after — for the
// instant just before naiveLocal, then filtering candidates against the
// year set.
func (a *ast) Next(naiveLocal time.Time) time.Time {
	t := naiveLocal.Add(-time.Nanosecond)
	for i := 0; i < maxYearScans; i++ {
		next := a.inner.Next(t)
		if next.IsZero() {
			return time.Time{}
		}
		if a.years.matches(next.Year()) {
			return next
		}
		t = next
	}
	return time.Time{}
}

// maxYearScans bounds how many candidate occurrences we'll walk through
// looking for one matching the year field, before giving up and reporting
// no future match.
const maxYearScans = 4000

// Parse parses a cron expression into a schedule.CronAST. A 5-whitespace-
// field expression is standard; more than 5 fields is extended: 6 fields
// means second-prefixed, 7 means second-prefixed and year-suffixed.
func Parse(expr string) (schedule.CronAST, error) {
	trimmed := strings.TrimSpace(expr)
	if strings.HasPrefix(trimmed, "@") {
		sched, err := standardParser.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCron, expr, err)
		}
		return &ast{inner: sched, years: anyYear{}}, nil
	}

	fields := strings.Fields(trimmed)
	switch {
	case len(fields) == 5:
		sched, err := standardParser.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCron, expr, err)
		}
		return &ast{inner: sched, years: anyYear{}}, nil

	case len(fields) == 6:
		sched, err := extendedParser.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCron, expr, err)
		}
		return &ast{inner: sched, years: anyYear{}}, nil

	case len(fields) == 7:
		yearField := fields[6]
		sixField := strings.Join(fields[:6], " ")
		sched, err := extendedParser.Parse(sixField)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCron, expr, err)
		}
		years, err := parseYearSet(yearField)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidCron, expr, err)
		}
		return &ast{inner: sched, years: years}, nil

	default:
		return nil, fmt.Errorf("%w: %q: expected 5, 6, or 7 fields, got %d", ErrInvalidCron, expr, len(fields))
	}
}

// yearSet matches a cron year field.
type yearSet interface {
	matches(year int) bool
}

// anyYear matches "*": every year.
type anyYear struct{}

func (anyYear) matches(int) bool { return true }

// explicitYears matches a comma-separated list of literal years: no ranges
// or steps, just literal values (e.g. "2026,2027,2030").
type explicitYears map[int]struct{}

func (e explicitYears) matches(year int) bool {
	_, ok := e[year]
	return ok
}

func parseYearSet(field string) (yearSet, error) {
	if field == "*" {
		return anyYear{}, nil
	}
	parts := strings.Split(field, ",")
	years := make(explicitYears, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid year %q: %w", p, err)
		}
		years[n] = struct{}{}
	}
	return years, nil
}
