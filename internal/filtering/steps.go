package filtering

import "github.com/spigell/junior-hunter/internal/config"

// DefaultSteps builds the policy filters in scan order. The match threshold
// is disabled when no resume profile is available.
func DefaultSteps(policy *config.Policy, pref Preference, scoring bool) []Filter {
	steps := []Filter{
		NewDurationPreference(pref),
		NewMatchThreshold(policy.MinimumMatchScore),
		NewJuniorThreshold(policy.MinimumJuniorScore),
	}

	if !scoring {
		DisableByName(steps, "match_threshold", "match scoring is not configured")
	}

	return steps
}
