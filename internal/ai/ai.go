// Package ai defines the text-understanding capability used for resume
// parsing and match scoring, together with tolerant parsing of the JSON
// replies models return.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNoJSON is returned when a response holds no parseable JSON object.
var ErrNoJSON = errors.New("response contains no json object")

// Generator sends a prompt in JSON response mode and returns the raw reply.
type Generator interface {
	GenerateJSON(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

// ExtractJSON strips a surrounding code fence from raw. Without a fence it
// returns the span from the first '{' to the last '}'.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```JSON")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
		return strings.TrimSpace(raw)
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end < start {
		return ""
	}
	return raw[start : end+1]
}

// DecodeJSON extracts the JSON object from raw and unmarshals it into v.
func DecodeJSON(raw string, v any) error {
	cleaned := ExtractJSON(raw)
	if cleaned == "" {
		return ErrNoJSON
	}
	if err := json.Unmarshal([]byte(cleaned), v); err != nil {
		// a fenced reply may still carry prose around the object
		if span := ExtractJSON(strings.Trim(cleaned, "`")); span != "" && span != cleaned {
			if json.Unmarshal([]byte(span), v) == nil {
				return nil
			}
		}
		return fmt.Errorf("%w: %v", ErrNoJSON, err)
	}
	return nil
}

func CoerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

// CoerceFloat returns NaN when v is not a number.
func CoerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return math.NaN()
		}
		return f
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// CoerceInt rounds a numeric value. ok is false when v is not a number.
func CoerceInt(v any) (int, bool) {
	f := CoerceFloat(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Round(f)), true
}

func CoerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// CoerceStrings accepts a list of values or a single comma separated string.
// Empty entries are dropped; the result is never nil.
func CoerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := CoerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range val {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, item := range strings.Split(val, ",") {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
