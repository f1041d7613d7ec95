package filtering

import (
	"fmt"
	"math"
	"strconv"
)

type matchThreshold struct {
	minimum  int
	disabled bool
	reason   string
}

// NewMatchThreshold rejects postings whose match score is below minimum.
// Postings that were not scored pass.
func NewMatchThreshold(minimum int) Filter {
	return &matchThreshold{minimum: minimum}
}

func (f *matchThreshold) Name() string { return "match_threshold" }

func (f *matchThreshold) Stage() Stage { return StageMatch }

func (f *matchThreshold) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *matchThreshold) IsEnabled() bool { return !f.disabled }

func (f *matchThreshold) Validate() error {
	if f.minimum < 0 || f.minimum > 100 {
		return fmt.Errorf("minimum match score must be within 0..100, got %d", f.minimum)
	}
	return nil
}

func (f *matchThreshold) Apply(c *Candidate) string {
	if c.Match == nil {
		return ""
	}
	if c.Match.MatchScore < f.minimum {
		return fmt.Sprintf("match score %d%% is below %d%%", c.Match.MatchScore, f.minimum)
	}
	return ""
}

func (f *matchThreshold) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_match_score": strconv.Itoa(f.minimum)},
	}
}

type juniorThreshold struct {
	minimum  float64
	disabled bool
	reason   string
}

// NewJuniorThreshold accepts postings whose first plus second work term share
// is strictly greater than minimum.
func NewJuniorThreshold(minimum float64) Filter {
	return &juniorThreshold{minimum: minimum}
}

func (f *juniorThreshold) Name() string { return "junior_threshold" }

func (f *juniorThreshold) Stage() Stage { return StageJunior }

func (f *juniorThreshold) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *juniorThreshold) IsEnabled() bool { return !f.disabled }

func (f *juniorThreshold) Validate() error {
	if f.minimum < 0 || math.IsNaN(f.minimum) {
		return fmt.Errorf("minimum junior score must not be negative, got %v", f.minimum)
	}
	return nil
}

func (f *juniorThreshold) Apply(c *Candidate) string {
	if c.Seniority == nil {
		return "no chart signal"
	}
	if total := c.Seniority.Total(); total <= f.minimum {
		return fmt.Sprintf("junior score %.1f%% is not above %.1f%%", total, f.minimum)
	}
	return ""
}

func (f *juniorThreshold) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"minimum_junior_score": strconv.FormatFloat(f.minimum, 'f', 1, 64)},
	}
}
