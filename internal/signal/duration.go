// Package signal turns raw detail-view text into canonical values. Every
// function here is pure and total.
package signal

import (
	"strings"

	"golang.org/x/text/cases"
)

// DurationCategory is the normalized work-term length of a posting.
type DurationCategory int

const (
	Unknown DurationCategory = iota
	FourMonth
	EightMonth
	FourToEightMonth
	Flexible
)

func (c DurationCategory) String() string {
	switch c {
	case FourMonth:
		return "4 Month"
	case EightMonth:
		return "8 Month"
	case FourToEightMonth:
		return "4-8 Month"
	case Flexible:
		return "Flexible"
	default:
		return "Unknown"
	}
}

// NormalizeText case-folds s and collapses every whitespace run into a single
// space.
func NormalizeText(s string) string {
	folded := cases.Fold().String(s)
	return strings.Join(strings.Fields(folded), " ")
}

// NormalizeDuration maps raw duration text to a category. "flexible" wins over
// any numeric mention; the numeric buckets require the word "month".
func NormalizeDuration(raw string) DurationCategory {
	text := NormalizeText(raw)

	if strings.Contains(text, "flexible") {
		return Flexible
	}

	if !strings.Contains(text, "month") {
		return Unknown
	}

	four := strings.Contains(text, "4")
	eight := strings.Contains(text, "8")

	switch {
	case four && eight:
		return FourToEightMonth
	case four:
		return FourMonth
	case eight:
		return EightMonth
	default:
		return Unknown
	}
}
