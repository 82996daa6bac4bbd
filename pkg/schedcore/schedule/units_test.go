package schedule

import (
	"errors"
	"testing"
)

func TestMillisPerUnit(t *testing.T) {
	cases := []struct {
		value int64
		unit  Unit
		want  int64
	}{
		{5, Milliseconds, 5},
		{1, "milliseconds", 1},
		{2, Seconds, 2000},
		{1, "sec", 1000},
		{1, "seconds", 1000},
		{3, Minutes, 180000},
		{1, "min", 60000},
		{1, Hours, 3600000},
		{1, Days, 86400000},
		{1, Weeks, 604800000},
		{2, Weeks, 1209600000},
	}
	for _, tc := range cases {
		got, err := millisPerUnit(tc.value, tc.unit)
		if err != nil {
			t.Errorf("millisPerUnit(%d, %q) returned error: %v", tc.value, tc.unit, err)
			continue
		}
		if got != tc.want {
			t.Errorf("millisPerUnit(%d, %q) = %d, want %d", tc.value, tc.unit, got, tc.want)
		}
	}
}

func TestMillisPerUnitRejectsUnknownUnit(t *testing.T) {
	_, err := millisPerUnit(1, "fortnight")
	if !errors.Is(err, ErrUnknownUnit) {
		t.Errorf("millisPerUnit with unknown unit = %v, want ErrUnknownUnit", err)
	}
}

func TestResolvedTimezone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "Etc/UTC"},
		{"utc", "Etc/UTC"},
		{"America/Chicago", "America/Chicago"},
	}
	for _, tc := range cases {
		opts := Options{Timezone: tc.in}
		if got := opts.ResolvedTimezone(); got != tc.want {
			t.Errorf("ResolvedTimezone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolvedStrategy(t *testing.T) {
	if got := (Options{}).ResolvedStrategy(); got != DefaultNonexistentStrategy {
		t.Errorf("ResolvedStrategy() with zero value = %q, want default %q", got, DefaultNonexistentStrategy)
	}
	opts := Options{NonexistentTimeStrategy: StrategyAdjust}
	if got := opts.ResolvedStrategy(); got != StrategyAdjust {
		t.Errorf("ResolvedStrategy() = %q, want %q", got, StrategyAdjust)
	}
}
