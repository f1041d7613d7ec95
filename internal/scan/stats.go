package scan

import "go.uber.org/zap"

// Outcome is how a single listing ended.
type Outcome int

const (
	OutcomeAccepted Outcome = iota
	OutcomeRejected
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// PageStats counts listing outcomes.
type PageStats struct {
	Processed int
	Accepted  int
	Rejected  int
	Skipped   int
	Failed    int
}

func (s *PageStats) add(o Outcome) {
	s.Processed++
	switch o {
	case OutcomeAccepted:
		s.Accepted++
	case OutcomeRejected:
		s.Rejected++
	case OutcomeSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
}

func (s *PageStats) merge(other PageStats) {
	s.Processed += other.Processed
	s.Accepted += other.Accepted
	s.Rejected += other.Rejected
	s.Skipped += other.Skipped
	s.Failed += other.Failed
}

func (s PageStats) fields() []zap.Field {
	return []zap.Field{
		zap.Int("processed", s.Processed),
		zap.Int("accepted", s.Accepted),
		zap.Int("rejected", s.Rejected),
		zap.Int("skipped", s.Skipped),
		zap.Int("failed", s.Failed),
	}
}

// Summary totals a whole run.
type Summary struct {
	Pages int
	PageStats
}
