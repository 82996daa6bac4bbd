package schedule

import "time"

// localKind classifies how a naive (year, month, day, hour, minute, second)
// wall-clock tuple resolves inside a timezone: exactly one real instant
// (unambiguous), two real instants sharing the same wall clock (ambiguous,
// a fall-back overlap), or zero real instants (gap, a spring-forward jump).
//
// Go's own time.Date is explicitly documented as picking an unspecified one
// of the two zones at a transition boundary, so it cannot be relied on for
// deterministic resolution. This resolver instead probes both candidate UTC
// offsets directly via Time.Zone/ZoneBounds (stdlib, Go 1.19+) and decides
// deterministically.
type localKind int

const (
	localUnambiguous localKind = iota
	localAmbiguous
	localGap
)

// localResolution is the result of resolving a naive local wall-clock tuple.
type localResolution struct {
	kind localKind

	// Unambiguous case.
	instant time.Time

	// Ambiguous case: earlier and later are the two real instants sharing
	// this wall clock, ordered by absolute (UTC) time.
	earlier time.Time
	later   time.Time

	// Gap case: the first instant at or after which the new (post-gap)
	// offset is in effect.
	justAfterGap time.Time
}

// resolveLocal resolves a naive local wall-clock tuple in loc.
func resolveLocal(loc *time.Location, y int, mo time.Month, d, hh, mm, ss int) localResolution {
	// naiveUTC is a pure arithmetic anchor: the same numeric fields,
	// interpreted as UTC. It is never itself a real instant in loc; it's
	// only used so "naiveUTC - offset" computes a real candidate instant
	// for a given candidate offset.
	naiveUTC := time.Date(y, mo, d, hh, mm, ss, 0, time.UTC)

	// First guess: let time.Date pick an offset (unspecified which, at a
	// transition, but always one of the two legitimate candidates).
	guess := time.Date(y, mo, d, hh, mm, ss, 0, loc)
	_, offGuess := guess.Zone()

	// Refine: re-derive the offset actually in effect at the candidate
	// instant built from offGuess. For ordinary (non-transition) wall
	// times this is a no-op fixed point; near a transition it pins down
	// one concrete, real candidate instant.
	candA := naiveUTC.Add(-time.Duration(offGuess) * time.Second)
	_, offA := candA.In(loc).Zone()
	candA = naiveUTC.Add(-time.Duration(offA) * time.Second)

	// Probe nearby instants for a second, different offset — the other
	// side of a DST transition, if one is nearby. DST shifts are bounded
	// (historically <= 2h), so a +/-6h window safely brackets the
	// transition without risking crossing into an unrelated one.
	offB := offA
	for _, probe := range []time.Duration{
		-time.Hour, time.Hour, -3 * time.Hour, 3 * time.Hour, -6 * time.Hour, 6 * time.Hour,
	} {
		if _, o := candA.Add(probe).In(loc).Zone(); o != offA {
			offB = o
			break
		}
	}
	candB := naiveUTC.Add(-time.Duration(offB) * time.Second)

	matchesWall := func(t time.Time) bool {
		tt := t.In(loc)
		return tt.Year() == y && tt.Month() == mo && tt.Day() == d &&
			tt.Hour() == hh && tt.Minute() == mm && tt.Second() == ss
	}

	aOK := matchesWall(candA)
	bOK := matchesWall(candB)

	switch {
	case aOK && bOK && !candA.Equal(candB):
		earlier, later := candA, candB
		if later.Before(earlier) {
			earlier, later = later, earlier
		}
		return localResolution{kind: localAmbiguous, earlier: earlier, later: later}
	case aOK:
		return localResolution{kind: localUnambiguous, instant: candA}
	case bOK:
		return localResolution{kind: localUnambiguous, instant: candB}
	default:
		// Gap: neither candidate reproduces the requested wall clock.
		// The boundary of whichever period candA sits in is the
		// transition instant — the first moment the new offset applies.
		start, end := candA.In(loc).ZoneBounds()
		justAfter := end
		if justAfter.IsZero() {
			justAfter = start
		}
		return localResolution{kind: localGap, justAfterGap: justAfter}
	}
}

// adjustForGap implements the "adjust" nonexistent-time strategy: take
// midnight of the local date (always valid) and add the nonexistent time's
// offset-from-midnight as an absolute duration, so the result preserves the
// same distance from midnight even though the DST jump shifted the wall
// clock.
func adjustForGap(loc *time.Location, y int, mo time.Month, d, hh, mm, ss int) time.Time {
	midnight := time.Date(y, mo, d, 0, 0, 0, 0, loc)
	offset := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute + time.Duration(ss)*time.Second
	return midnight.Add(offset)
}
