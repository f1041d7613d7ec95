// Package filtering holds the accept/reject policy applied to each scanned
// posting. Filters are grouped by the scan stage that has the data they need,
// so a posting can be rejected before the expensive stages run.
package filtering

import (
	"fmt"

	"github.com/spigell/junior-hunter/internal/matching"
	"github.com/spigell/junior-hunter/internal/signal"
	"go.uber.org/zap"
)

// Stage is the point of the listing scan at which a filter runs.
type Stage string

const (
	StageDuration Stage = "duration"
	StageMatch    Stage = "match"
	StageJunior   Stage = "junior"
)

// Candidate is what the scan knows about a posting so far. Match and
// Seniority stay nil until their stage has run.
type Candidate struct {
	Title     string
	Duration  signal.DurationCategory
	Match     *matching.Result
	Seniority *signal.Seniority
}

// Filter represents a single accept/reject rule.
type Filter interface {
	Name() string
	Stage() Stage
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	// Apply returns a non-empty reason when the candidate is rejected.
	Apply(c *Candidate) (reason string)
}

// Verdict is a rejection produced by a filter.
type Verdict struct {
	Filter string
	Stage  Stage
	Reason string
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Validate checks every enabled filter.
func Validate(steps []Filter) error {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
	}
	return nil
}

// Check runs the enabled filters of stage in order and returns the first
// rejection, or nil when the candidate passes.
func Check(steps []Filter, stage Stage, c *Candidate, logger *zap.Logger) *Verdict {
	if logger == nil {
		logger = zap.NewNop()
	}

	for _, step := range steps {
		if step.Stage() != stage || !step.IsEnabled() {
			continue
		}

		if reason := step.Apply(c); reason != "" {
			logger.Debug("filter rejected posting",
				zap.String("name", step.Name()),
				zap.String("reason", reason),
			)
			return &Verdict{Filter: step.Name(), Stage: stage, Reason: reason}
		}
	}
	return nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
