package scrape

import (
	"time"
)

// Status is the terminal classification of a collector within one round.
type Status int

const (
	StatusSuccess Status = iota
	StatusFailure
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Outcome of one collector in one round. Duration is only set on success.
type Outcome struct {
	Collector string
	Status    Status
	Duration  time.Duration
	Err       error
}

// Report summarises a finished round. Outcomes are in completion order,
// timeouts last.
type Report struct {
	ID       string
	Start    time.Time
	Elapsed  time.Duration
	Outcomes []Outcome
}

// Outcome looks up the outcome recorded for a collector.
func (r *Report) Outcome(name string) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Collector == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Count returns how many collectors ended with status s.
func (r *Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// clampDuration keeps a success duration within [0, limit].
func clampDuration(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > limit {
		return limit
	}
	return d
}
