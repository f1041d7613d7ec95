// Package extract pulls named fields out of an open detail view. Every field
// is read through an ordered list of strategies, each one bounded in time, so
// a missing element degrades to the next strategy instead of stalling.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/logger"
	"github.com/spigell/junior-hunter/internal/page"
	"go.uber.org/zap"
)

// StrategyNone marks a field no strategy could read.
const StrategyNone = "none"

// Kind identifies a strategy family.
type Kind string

const (
	KindTab   Kind = "tab"
	KindLabel Kind = "label"
	KindRegex Kind = "regex"
	KindDump  Kind = "dump"
)

// Strategy reads one candidate value from the view.
type Strategy struct {
	Name string
	Kind Kind
	Run  func(ctx context.Context, view page.Locator) (string, bool)
}

// FieldSpec describes where a field lives.
type FieldSpec struct {
	Name      string
	Label     string
	Tab       string
	Selectors []string
	MinLength int
}

// SpecFromConfig turns a configured field into a FieldSpec.
func SpecFromConfig(name string, f *config.Field) FieldSpec {
	if f == nil {
		return FieldSpec{Name: name}
	}
	return FieldSpec{
		Name:      name,
		Label:     f.Label,
		Tab:       f.Tab,
		Selectors: append([]string(nil), f.Selectors...),
		MinLength: f.MinLength,
	}
}

// Field is an extracted raw value with its provenance.
type Field struct {
	Name     string
	Value    string
	Strategy string
	// Fallback is set when the first strategy did not produce the value.
	Fallback bool
	// Short is set when the value is below the field's minimum length.
	Short bool
}

// Found reports whether any strategy produced a value.
func (f Field) Found() bool {
	return f.Strategy != StrategyNone && f.Value != ""
}

// Extractor runs strategies against detail views.
type Extractor struct {
	tabs   *Tabs
	wait   time.Duration
	logger *zap.Logger
}

// New creates an extractor. wait bounds every single strategy step.
func New(tabs *Tabs, wait time.Duration, log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{tabs: tabs, wait: wait, logger: log}
}

// Strategies returns the ordered strategy list for spec.
func (e *Extractor) Strategies(spec FieldSpec) []Strategy {
	var out []Strategy
	if spec.Tab != "" || len(spec.Selectors) > 0 {
		out = append(out, e.tabScoped(spec))
	}
	if spec.Label != "" {
		out = append(out, e.labelAdjacent(spec.Label), e.labelRegex(spec.Label))
	}
	return append(out, e.dump())
}

// Extract reads spec from view. It never fails: on total failure the field
// is empty and its strategy is StrategyNone.
func (e *Extractor) Extract(ctx context.Context, view page.Locator, spec FieldSpec) Field {
	return e.Run(ctx, view, spec, e.Strategies(spec))
}

// Run tries strategies in order. A value shorter than spec.MinLength falls
// through to the next strategy and is kept only if nothing better follows.
func (e *Extractor) Run(ctx context.Context, view page.Locator, spec FieldSpec, strategies []Strategy) Field {
	log := logger.WithFields(e.logger, zap.String(logger.FieldField, spec.Name))

	var short *Field
	for i, s := range strategies {
		if ctx.Err() != nil {
			break
		}

		value, ok := runSafely(ctx, view, s)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			log.Debug("strategy produced nothing", zap.String(logger.FieldStrategy, s.Name))
			continue
		}

		field := Field{Name: spec.Name, Value: value, Strategy: s.Name, Fallback: i > 0}
		if spec.MinLength > 0 && len([]rune(value)) < spec.MinLength {
			log.Debug("strategy produced short text",
				zap.String(logger.FieldStrategy, s.Name),
				zap.Int("length", len([]rune(value))),
			)
			if short == nil {
				field.Short = true
				short = &field
			}
			continue
		}

		if field.Fallback {
			log.Info("field extracted by fallback", zap.String(logger.FieldStrategy, s.Name))
		} else {
			log.Debug("field extracted", zap.String(logger.FieldStrategy, s.Name))
		}
		return field
	}

	if short != nil {
		log.Warn("field text is shorter than expected",
			zap.String(logger.FieldStrategy, short.Strategy),
			zap.Bool("short_text", true),
		)
		return *short
	}

	log.Warn("field not found")
	return Field{Name: spec.Name, Strategy: StrategyNone, Fallback: true}
}

func runSafely(ctx context.Context, view page.Locator, s Strategy) (value string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			value, ok = "", false
		}
	}()
	return s.Run(ctx, view)
}

func (e *Extractor) tabScoped(spec FieldSpec) Strategy {
	return Strategy{
		Name: "tab-scoped",
		Kind: KindTab,
		Run: func(ctx context.Context, view page.Locator) (string, bool) {
			if spec.Tab != "" && e.tabs != nil {
				e.tabs.Activate(ctx, view, spec.Tab)
			}

			loc, sel, ok := page.FirstVisible(view, spec.Selectors, e.wait)
			if !ok {
				return "", false
			}

			text, err := loc.InnerText(e.wait)
			if err != nil {
				e.logger.Debug("failed to read container", zap.String("selector", sel), zap.Error(err))
				return "", false
			}
			return text, true
		},
	}
}

func (e *Extractor) labelAdjacent(label string) Strategy {
	return Strategy{
		Name: "label-adjacent",
		Kind: KindLabel,
		Run: func(_ context.Context, view page.Locator) (string, bool) {
			if html, err := view.InnerHTML(e.wait); err == nil {
				if text, ok := LabelRow(html, label); ok {
					return text, true
				}
			}

			row := view.Locator(fmt.Sprintf("text=%s", label)).First().Parent()
			if !row.IsVisible() {
				return "", false
			}
			text, err := row.InnerText(e.wait)
			if err != nil {
				return "", false
			}
			return text, true
		},
	}
}

func (e *Extractor) labelRegex(label string) Strategy {
	re := LabelPattern(label)
	return Strategy{
		Name: "label-regex",
		Kind: KindRegex,
		Run: func(_ context.Context, view page.Locator) (string, bool) {
			text, err := view.InnerText(e.wait)
			if err != nil {
				return "", false
			}
			m := re.FindStringSubmatch(text)
			if len(m) < 2 {
				return "", false
			}
			return m[1], true
		},
	}
}

func (e *Extractor) dump() Strategy {
	return Strategy{
		Name: "view-dump",
		Kind: KindDump,
		Run: func(_ context.Context, view page.Locator) (string, bool) {
			text, err := view.InnerText(e.wait)
			if err != nil {
				return "", false
			}
			return text, true
		},
	}
}

// LabelPattern matches "<label>:? value" case-insensitively and captures the
// value up to the end of the line.
func LabelPattern(label string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(label)) + `:?\s*(.+)`)
}

const rowSelector = "tr, li, dl, p, section, .row, .field, .form-group"

// LabelRow finds the first element whose own text contains label and returns
// the text of its containing row, with whitespace collapsed.
func LabelRow(html, label string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	needle := strings.ToLower(strings.TrimSpace(label))
	if needle == "" {
		return "", false
	}

	var match *goquery.Selection
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(strings.ToLower(ownText(s)), needle) {
			match = s
			return false
		}
		return true
	})
	if match == nil {
		return "", false
	}

	row := match.Closest(rowSelector)
	if row.Length() == 0 {
		row = match.Parent()
		if row.Length() == 0 || goquery.NodeName(row) == "body" {
			row = match
		}
	}

	text := spacedText(row)
	return text, text != ""
}

// spacedText joins the text nodes under s with single spaces so adjacent
// cells do not run together.
func spacedText(s *goquery.Selection) string {
	var parts []string
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			parts = append(parts, c.Text())
			return
		}
		parts = append(parts, spacedText(c))
	})
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}
