package sched

import (
	"testing"
	"time"
)

func TestDue(t *testing.T) {
	base := time.Unix(1767225600, 0)

	tests := []struct {
		name    string
		elapsed time.Duration
		period  time.Duration
		want    bool
	}{
		{"before period", 9 * time.Second, 10 * time.Second, false},
		{"exactly period", 10 * time.Second, 10 * time.Second, true},
		{"after period", 11 * time.Second, 10 * time.Second, true},
		{"well past period", time.Hour, 10 * time.Second, true},
		{"zero elapsed", 0, 10 * time.Second, false},
		{"zero period disables", time.Hour, 0, false},
		{"negative period disables", time.Hour, -time.Second, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Due(base.Add(tc.elapsed), base, tc.period); got != tc.want {
				t.Errorf("Due(+%v, period %v) = %v, want %v", tc.elapsed, tc.period, got, tc.want)
			}
		})
	}
}

// A sample action must fire at least once per period and never twice
// within one period when the caller advances last on each fire.
func TestDueNoDoubleFireNoStarvation(t *testing.T) {
	const period = 10 * time.Second

	start := time.Unix(1767225600, 0)
	last := start

	var fires []time.Time
	for i := 1; i <= 600; i++ {
		now := start.Add(time.Duration(i) * time.Second)
		if Due(now, last, period) {
			last = now
			fires = append(fires, now)
		}
	}

	if len(fires) != 60 {
		t.Fatalf("expected 60 fires over 600s, got %d", len(fires))
	}
	for i := 1; i < len(fires); i++ {
		if gap := fires[i].Sub(fires[i-1]); gap < period {
			t.Errorf("fires %d and %d only %v apart", i-1, i, gap)
		}
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := System().Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("System().Now() = %v, outside [%v, %v]", got, before, after)
	}
}
