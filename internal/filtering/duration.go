package filtering

import (
	"fmt"
	"strings"

	"github.com/spigell/junior-hunter/internal/signal"
)

// Preference is the operator's preferred work term length.
type Preference string

const (
	PreferFour  Preference = "4"
	PreferEight Preference = "8"
	PreferAny   Preference = "any"
)

// ParsePreference maps "4" and "8" to themselves and anything else to any.
func ParsePreference(s string) Preference {
	switch strings.TrimSpace(s) {
	case string(PreferFour):
		return PreferFour
	case string(PreferEight):
		return PreferEight
	default:
		return PreferAny
	}
}

type durationFilter struct {
	preference Preference
	disabled   bool
	reason     string
}

// NewDurationPreference rejects postings whose duration contradicts pref.
// Only the opposite fixed length is rejected; combined, flexible and unknown
// durations always pass.
func NewDurationPreference(pref Preference) Filter {
	return &durationFilter{preference: pref}
}

func (f *durationFilter) Name() string { return "duration_preference" }

func (f *durationFilter) Stage() Stage { return StageDuration }

func (f *durationFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *durationFilter) IsEnabled() bool { return !f.disabled }

func (f *durationFilter) Validate() error {
	switch f.preference {
	case PreferFour, PreferEight, PreferAny:
		return nil
	default:
		return fmt.Errorf("unknown duration preference %q", f.preference)
	}
}

func (f *durationFilter) Apply(c *Candidate) string {
	var rejected signal.DurationCategory
	switch f.preference {
	case PreferFour:
		rejected = signal.EightMonth
	case PreferEight:
		rejected = signal.FourMonth
	default:
		return ""
	}

	if c.Duration == rejected {
		return fmt.Sprintf("duration %s does not match preference %s", c.Duration, f.preference)
	}
	return ""
}

func (f *durationFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"preference": string(f.preference)},
	}
}
