package signal

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	firstTermRe  = regexp.MustCompile(`(?i)(?:first|1st).*?(\d+(?:\.\d+)?)\s*%`)
	secondTermRe = regexp.MustCompile(`(?i)(?:second|2nd).*?(\d+(?:\.\d+)?)\s*%`)
)

// Seniority is the share of historical hires in the first and second work
// terms, in percent.
type Seniority struct {
	First  float64
	Second float64
}

// Total is the junior score used by the accept/reject policy.
func (s Seniority) Total() float64 {
	return s.First + s.Second
}

// ParseSeniorityText reads "First ... N%" and "Second ... N%" from chart text.
// Only the first match per term is used.
func ParseSeniorityText(raw string) Seniority {
	text := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(raw)

	first, _ := matchPercent(firstTermRe, text)
	second, _ := matchPercent(secondTermRe, text)

	return Seniority{First: first, Second: second}
}

// HasSeniorityPercent reports whether raw mentions a percentage for either the
// first or the second work term.
func HasSeniorityPercent(raw string) bool {
	text := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(raw)
	_, first := matchPercent(firstTermRe, text)
	_, second := matchPercent(secondTermRe, text)
	return first || second
}

func matchPercent(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
