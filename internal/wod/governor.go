package wod

// Governor is a fail-fast circuit breaker for storage failures. The
// counter never decays and never resets while the process runs: repeated
// append failures on this platform mean a persistent fault (full disk,
// failed media) that sampling more often will not fix.
type Governor struct {
	failures  int
	threshold int
}

// NewGovernor creates a governor that trips once more than threshold
// failures have been recorded.
func NewGovernor(threshold int) *Governor {
	return &Governor{threshold: threshold}
}

// RecordFailure adds one failed append to the count.
func (g *Governor) RecordFailure() {
	g.failures++
}

// Failures returns the cumulative failure count for this run.
func (g *Governor) Failures() int {
	return g.failures
}

// ShouldShutDown reports whether the failure count strictly exceeds the
// threshold and the process should stop sampling.
func (g *Governor) ShouldShutDown() bool {
	return g.failures > g.threshold
}
