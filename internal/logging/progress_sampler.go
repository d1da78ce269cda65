package logging

import "sync"

// ProgressSampler throttles progress log records so a long encode does not
// flood the log: a record passes when the percent value advanced by at least
// the configured step since the last record that passed.
type ProgressSampler struct {
	mu          sync.Mutex
	stepPercent float64
	lastPercent float64
	seenAny     bool
}

// NewProgressSampler returns a sampler emitting roughly one record per
// stepPercent of progress. A non-positive step defaults to 5.
func NewProgressSampler(stepPercent float64) *ProgressSampler {
	if stepPercent <= 0 {
		stepPercent = 5
	}
	return &ProgressSampler{stepPercent: stepPercent, lastPercent: -1}
}

// ShouldLog reports whether a progress record at the given percent should be
// emitted. Records with a negative percent (unknown) always pass.
func (s *ProgressSampler) ShouldLog(percent float64) bool {
	if s == nil {
		return true
	}
	if percent < 0 {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.seenAny || percent >= 100 || percent-s.lastPercent >= s.stepPercent {
		s.seenAny = true
		s.lastPercent = percent
		return true
	}
	return false
}
