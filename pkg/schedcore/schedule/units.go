package schedule

import "fmt"

// unitTable maps every canonical unit and its accepted aliases to the
// number of milliseconds it represents:
//
//	ms | milliseconds = 1
//	s | sec | seconds = 1000*ms
//	m | min | minutes = 60*s
//	h | hours = 60*m
//	d | days = 24*h
//	w | weeks = 7*d
//
// An unrecognized unit is always rejected with an error, never silently
// mis-converted.
var unitTable = map[string]int64{
	"ms": 1, "milliseconds": 1,
	"s": 1000, "sec": 1000, "seconds": 1000,
	"m": 60 * 1000, "min": 60 * 1000, "minutes": 60 * 1000,
	"h": 60 * 60 * 1000, "hours": 60 * 60 * 1000,
	"d": 24 * 60 * 60 * 1000, "days": 24 * 60 * 60 * 1000,
	"w": 7 * 24 * 60 * 60 * 1000, "weeks": 7 * 24 * 60 * 60 * 1000,
}

// millisPerUnit converts a (value, unit) pair to milliseconds, rejecting any
// unit not in the canonical table (including aliases) with ErrUnknownUnit.
func millisPerUnit(value int64, unit Unit) (int64, error) {
	ms, ok := unitTable[string(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
	return value * ms, nil
}
