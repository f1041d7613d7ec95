package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spigell/junior-hunter/internal/pacing"
	"github.com/spigell/junior-hunter/internal/page"
	"github.com/spigell/junior-hunter/internal/page/pagetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const viewSelector = "div.modal.show"

func tabItem(id, label string, active bool) (*pagetest.Element, *pagetest.Element) {
	class := "nav-item"
	if active {
		class += " active"
	}
	li := pagetest.El(id+"-li").WithTag("li").WithAttr("class", class)
	link := pagetest.El(id, "a").WithTag("a").WithText(label)
	link.OnClick = func() { li.Attrs["class"] = "nav-item active" }
	li.Add(link)
	return li, link
}

func durationRow(value string) *pagetest.Element {
	return pagetest.El("table").WithTag("table").Add(
		pagetest.El("tbody").WithTag("tbody").Add(
			pagetest.El("row", "tr:has-text('Work Term Duration')").WithTag("tr").Add(
				pagetest.El("label").WithTag("td").WithText("Work Term Duration:"),
				pagetest.El("value").WithTag("td").WithText(value),
			),
		),
	)
}

func newExtractor(pacer pacing.Pacer, log *zap.Logger) *Extractor {
	return New(NewTabs("a", "active", time.Second, pacer, log), time.Second, log)
}

func descriptionSpec() FieldSpec {
	return FieldSpec{
		Name:      "description",
		Label:     "Job Description",
		Tab:       "Job Posting Information",
		Selectors: []string{"#postingDiv", ".tab-pane.active"},
		MinLength: 10,
	}
}

func TestExtractTabScopedClicksInactiveTab(t *testing.T) {
	t.Parallel()

	li, _ := tabItem("tab-posting", "Job Posting Information", false)
	view := pagetest.El("dialog", viewSelector).Add(
		pagetest.El("tabs").WithTag("ul").Add(li),
		pagetest.El("pane", ".tab-pane.active").WithText("Build backend services in Go with a friendly team."),
	)
	p := pagetest.New(view)
	pacer := &pacing.Recorder{}

	field := newExtractor(pacer, nil).Extract(context.Background(), p.Locator(viewSelector).First(), descriptionSpec())

	require.True(t, field.Found())
	assert.Equal(t, "tab-scoped", field.Strategy)
	assert.False(t, field.Fallback)
	assert.False(t, field.Short)
	assert.Equal(t, "Build backend services in Go with a friendly team.", field.Value)
	assert.Equal(t, 1, p.CountCalls("click:tab-posting"))
	assert.Equal(t, 1, pacer.Count(pacing.AfterTab))
}

func TestExtractSkipsClickOnActiveTab(t *testing.T) {
	t.Parallel()

	li, _ := tabItem("tab-posting", "Job Posting Information", true)
	view := pagetest.El("dialog", viewSelector).Add(
		pagetest.El("tabs").WithTag("ul").Add(li),
		pagetest.El("pane", "#postingDiv").WithText("Write tests for the payments platform."),
	)
	p := pagetest.New(view)
	pacer := &pacing.Recorder{}

	field := newExtractor(pacer, nil).Extract(context.Background(), p.Locator(viewSelector).First(), descriptionSpec())

	assert.Equal(t, "tab-scoped", field.Strategy)
	assert.Equal(t, 0, p.CountCalls("click:tab-posting"))
	assert.Equal(t, 0, pacer.Count(pacing.AfterTab))
}

func TestExtractLabelAdjacentRow(t *testing.T) {
	t.Parallel()

	p := pagetest.New(pagetest.El("dialog", viewSelector).Add(durationRow("4 month work term")))

	field := newExtractor(nil, nil).Extract(context.Background(), p.Locator(viewSelector).First(), FieldSpec{
		Name:  "duration",
		Label: "Work Term Duration",
	})

	assert.Equal(t, "label-adjacent", field.Strategy)
	assert.False(t, field.Fallback)
	assert.Equal(t, "Work Term Duration: 4 month work term", field.Value)
}

func TestExtractFallsBackWhenTabContentMissing(t *testing.T) {
	t.Parallel()

	p := pagetest.New(pagetest.El("dialog", viewSelector).Add(durationRow("8 month work term")))

	field := newExtractor(nil, nil).Extract(context.Background(), p.Locator(viewSelector).First(), FieldSpec{
		Name:      "duration",
		Label:     "Work Term Duration",
		Tab:       "Job Posting Information",
		Selectors: []string{"div.missing"},
	})

	assert.Equal(t, "label-adjacent", field.Strategy)
	assert.True(t, field.Fallback)
	assert.Contains(t, field.Value, "8 month")
}

func TestExtractRegexStrategy(t *testing.T) {
	t.Parallel()

	p := pagetest.New(pagetest.El("dialog", viewSelector).Add(
		pagetest.El("line").WithText("work term duration 4 month work term"),
	))
	e := newExtractor(nil, nil)
	spec := FieldSpec{Name: "duration", Label: "Work Term Duration"}
	failing := Strategy{Name: "broken", Kind: KindTab, Run: func(context.Context, page.Locator) (string, bool) {
		return "", false
	}}

	field := e.Run(context.Background(), p.Locator(viewSelector).First(), spec, []Strategy{failing, e.labelRegex(spec.Label)})

	assert.Equal(t, "label-regex", field.Strategy)
	assert.True(t, field.Fallback)
	assert.Equal(t, "4 month work term", field.Value)
}

func TestExtractShortTextFallsThroughToDump(t *testing.T) {
	t.Parallel()

	view := pagetest.El("dialog", viewSelector).Add(
		pagetest.El("pane", ".tab-pane.active").WithText("TBD"),
		pagetest.El("footer").WithText("Contact the employer for more details about this role."),
	)
	p := pagetest.New(view)

	field := newExtractor(nil, nil).Extract(context.Background(), p.Locator(viewSelector).First(), FieldSpec{
		Name:      "description",
		Label:     "Job Description",
		Selectors: []string{".tab-pane.active"},
		MinLength: 10,
	})

	assert.Equal(t, "view-dump", field.Strategy)
	assert.False(t, field.Short)
	assert.Contains(t, field.Value, "Contact the employer")
}

func TestExtractKeepsShortTextWhenNothingBetter(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	p := pagetest.New(pagetest.El("dialog", viewSelector).Add(
		pagetest.El("pane", ".tab-pane.active").WithText("TBD"),
	))

	field := newExtractor(nil, zap.New(core)).Extract(context.Background(), p.Locator(viewSelector).First(), FieldSpec{
		Name:      "description",
		Selectors: []string{".tab-pane.active"},
		MinLength: 10,
	})

	assert.Equal(t, "tab-scoped", field.Strategy)
	assert.True(t, field.Short)
	assert.Equal(t, "TBD", field.Value)
	require.Equal(t, 1, logs.FilterMessage("field text is shorter than expected").Len())
}

func TestExtractTotalFailureReturnsEmptyField(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	view := pagetest.El("dialog", viewSelector)
	view.ReadErr = errors.New("detached")
	p := pagetest.New(view)

	field := newExtractor(nil, zap.New(core)).Extract(context.Background(), p.Locator(viewSelector).First(), FieldSpec{
		Name:  "duration",
		Label: "Work Term Duration",
	})

	assert.False(t, field.Found())
	assert.Equal(t, StrategyNone, field.Strategy)
	assert.Empty(t, field.Value)
	assert.Equal(t, 1, logs.FilterMessage("field not found").Len())
}

func TestExtractContainsPanickingStrategy(t *testing.T) {
	t.Parallel()

	p := pagetest.New(pagetest.El("dialog", viewSelector).WithText("Flexible duration"))
	e := newExtractor(nil, nil)
	boom := Strategy{Name: "boom", Kind: KindTab, Run: func(context.Context, page.Locator) (string, bool) {
		panic("stale element")
	}}

	field := e.Run(context.Background(), p.Locator(viewSelector).First(), FieldSpec{Name: "duration"}, []Strategy{boom, e.dump()})

	assert.Equal(t, "view-dump", field.Strategy)
	assert.Equal(t, "Flexible duration", field.Value)
}

func TestStrategiesOrder(t *testing.T) {
	t.Parallel()

	e := newExtractor(nil, nil)

	kinds := func(ss []Strategy) []Kind {
		out := make([]Kind, 0, len(ss))
		for _, s := range ss {
			out = append(out, s.Kind)
		}
		return out
	}

	assert.Equal(t, []Kind{KindTab, KindLabel, KindRegex, KindDump}, kinds(e.Strategies(descriptionSpec())))
	assert.Equal(t, []Kind{KindLabel, KindRegex, KindDump}, kinds(e.Strategies(FieldSpec{Label: "Work Term Duration"})))
	assert.Equal(t, []Kind{KindDump}, kinds(e.Strategies(FieldSpec{})))
}

func TestLabelPattern(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
		want string
	}{
		{name: "colon", text: "Work Term Duration: 4 month work term", want: "4 month work term"},
		{name: "case insensitive", text: "WORK TERM DURATION 8 months", want: "8 months"},
		{name: "value on next line", text: "Work Term Duration:\n4 month", want: "4 month"},
		{name: "stops at line end", text: "Work Term Duration: flexible\nOther: x", want: "flexible"},
	}

	re := LabelPattern("Work Term Duration")
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			m := re.FindStringSubmatch(tc.text)
			if len(m) < 2 {
				t.Fatalf("no match for %q", tc.text)
			}
			if m[1] != tc.want {
				t.Fatalf("got %q, want %q", m[1], tc.want)
			}
		})
	}
}

func TestLabelRowWithoutRowContainer(t *testing.T) {
	t.Parallel()

	text, ok := LabelRow("<div><span>Job Description</span> Design APIs</div>", "job description")
	if !ok {
		t.Fatalf("expected a match")
	}
	if text != "Job Description Design APIs" {
		t.Fatalf("unexpected row text %q", text)
	}

	if _, ok := LabelRow("<div>nothing</div>", "Job Description"); ok {
		t.Fatalf("expected no match")
	}
}
