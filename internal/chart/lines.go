package chart

import (
	"regexp"
	"strconv"

	"github.com/spigell/junior-hunter/internal/signal"
)

var (
	firstKeywordRe  = regexp.MustCompile(`(?i)\b(?:first|1st)\b`)
	secondKeywordRe = regexp.MustCompile(`(?i)\b(?:second|2nd)\b`)
	ordinalRe       = regexp.MustCompile(`(?i)\b(?:first|second|third|fourth|fifth|sixth|\d+(?:st|nd|rd|th))\b`)
	percentRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	numberRe        = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// ParseOCRLines reads work term percentages from recognized lines. A line
// naming a term takes its value from the text after the term, up to the next
// ordinal. When that span is empty the value comes from the next line, picked
// by the term's column when the header names several terms. The largest value
// per term wins. found is false when no term had a value.
func ParseOCRLines(lines []string) (s signal.Seniority, found bool) {
	for i, line := range lines {
		for _, term := range []struct {
			re  *regexp.Regexp
			dst *float64
		}{
			{firstKeywordRe, &s.First},
			{secondKeywordRe, &s.Second},
		} {
			loc := term.re.FindStringIndex(line)
			if loc == nil {
				continue
			}

			v, ok := spanValue(line, loc)
			if !ok && i+1 < len(lines) && !isTermLine(lines[i+1]) {
				v, ok = columnValue(lines[i+1], column(line, loc[0]))
			}
			if !ok {
				continue
			}

			found = true
			if v > *term.dst {
				*term.dst = v
			}
		}
	}
	return s, found
}

func isTermLine(line string) bool {
	return firstKeywordRe.MatchString(line) || secondKeywordRe.MatchString(line)
}

// spanValue reads the value following the keyword at loc.
func spanValue(line string, loc []int) (float64, bool) {
	span := line[loc[1]:]
	if next := ordinalRe.FindStringIndex(span); next != nil {
		span = span[:next[0]]
	}

	values := lineValues(span)
	if len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

// column is the position of the ordinal starting at offset among all
// ordinals of line, or -1 when it is the only one.
func column(line string, offset int) int {
	all := ordinalRe.FindAllStringIndex(line, -1)
	if len(all) < 2 {
		return -1
	}
	for n, loc := range all {
		if loc[0] == offset {
			return n
		}
	}
	return -1
}

func columnValue(line string, col int) (float64, bool) {
	values := lineValues(line)
	switch {
	case len(values) == 0:
		return 0, false
	case col < 0:
		return values[0], true
	case col < len(values):
		return values[col], true
	default:
		return 0, false
	}
}

// lineValues returns the percentages in line, or the bare numbers when
// there are none. Ordinal tokens never count as values.
func lineValues(line string) []float64 {
	line = ordinalRe.ReplaceAllString(line, " ")

	var values []float64
	for _, m := range percentRe.FindAllStringSubmatch(line, -1) {
		if v, ok := parseValue(m[1]); ok {
			values = append(values, v)
		}
	}
	if len(values) > 0 {
		return values
	}
	for _, m := range numberRe.FindAllString(line, -1) {
		if v, ok := parseValue(m); ok {
			values = append(values, v)
		}
	}
	return values
}

func parseValue(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
