package matching

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/spigell/junior-hunter/internal/resume"
)

type stubGenerator struct {
	responses []string
	errs      []error
	prompts   []string
	systems   []string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, system, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	s.systems = append(s.systems, system)

	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(s.responses) {
		return s.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

func (s *stubGenerator) Model() string { return "stub-model" }

func testProfile() *resume.Profile {
	p := &resume.Profile{
		PersonalInfo: resume.PersonalInfo{Name: "Ada"},
		Skills:       []string{"Go", "SQL"},
	}
	p.Normalize()
	return p
}

const keywordsReply = `{"required_skills": ["Go"], "preferred_skills": ["Kubernetes"], "experience_requirements": [], "key_responsibilities": ["Build APIs"]}`

func TestAnalyzeTwoStages(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{responses: []string{
		keywordsReply,
		`{"match_score": 78, "is_junior_friendly": true, "missing_skills": ["Kubernetes"], "reasoning": "Strong Go background"}`,
	}}

	got := NewScorer(stub, nil, 0).Analyze(context.Background(), testProfile(), "We need a Go developer to build APIs.")

	want := Result{MatchScore: 78, IsJuniorFriendly: true, MissingSkills: []string{"Kubernetes"}, Reasoning: "Strong Go background"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if len(stub.prompts) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(stub.prompts))
	}
	if !strings.Contains(stub.prompts[0], "We need a Go developer to build APIs.") {
		t.Fatalf("description missing from keyword prompt")
	}
	if !strings.Contains(stub.prompts[1], `"required_skills":["Go"]`) || !strings.Contains(stub.prompts[1], `"name":"Ada"`) {
		t.Fatalf("comparison prompt lacks requirements or profile: %s", stub.prompts[1])
	}
	if stub.systems[0] != extractSystem || stub.systems[1] != matchSystem {
		t.Fatalf("unexpected system prompts: %v", stub.systems)
	}
}

func TestAnalyzeStopsWhenKeywordsHaveNoJSON(t *testing.T) {
	t.Parallel()

	for _, reply := range []string{"Sorry, I can't parse that.", "{}"} {
		stub := &stubGenerator{responses: []string{reply, `{"match_score": 99}`}}

		got := NewScorer(stub, nil, 0).Analyze(context.Background(), testProfile(), "desc")

		if got.MatchScore != 0 || got.IsJuniorFriendly || got.Reasoning != ReasonNoKeywords {
			t.Fatalf("reply %q: unexpected result %+v", reply, got)
		}
		if got.MissingSkills == nil || len(got.MissingSkills) != 0 {
			t.Fatalf("reply %q: expected empty missing skills", reply)
		}
		if len(stub.prompts) != 1 {
			t.Fatalf("reply %q: comparison must not run, got %d calls", reply, len(stub.prompts))
		}
	}
}

func TestAnalyzeComparesAnyDecodedRequirements(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{
			name:  "non-canonical keys",
			reply: `{"skills": ["Go"], "responsibilities": ["Build APIs"]}`,
			want:  `"skills":["Go"]`,
		},
		{
			name:  "empty canonical lists with summary",
			reply: `{"required_skills": [], "preferred_skills": [], "experience_requirements": [], "key_responsibilities": [], "summary": "Backend internship"}`,
			want:  `"summary":"Backend internship"`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubGenerator{responses: []string{tc.reply, `{"match_score": 55, "reasoning": "partial"}`}}

			got := NewScorer(stub, nil, 0).Analyze(context.Background(), testProfile(), "desc")

			if got.MatchScore != 55 || got.Reasoning != "partial" {
				t.Fatalf("unexpected result %+v", got)
			}
			if len(stub.prompts) != 2 {
				t.Fatalf("expected 2 calls, got %d", len(stub.prompts))
			}
			if !strings.Contains(stub.prompts[1], tc.want) {
				t.Fatalf("comparison prompt lacks %s: %s", tc.want, stub.prompts[1])
			}
		})
	}
}

func TestAnalyzeMissingScore(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{responses: []string{keywordsReply, `{"is_junior_friendly": true, "reasoning": "looks fine"}`}}

	got := NewScorer(stub, nil, 0).Analyze(context.Background(), testProfile(), "desc")

	if got.MatchScore != 0 || got.Reasoning != ReasonInvalidSchema {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestAnalyzeTransportErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		stub   *stubGenerator
		calls  int
		reason string
	}{
		{name: "keywords", stub: &stubGenerator{errs: []error{errors.New("rate limited")}}, calls: 1, reason: ReasonNoKeywords},
		{name: "comparison", stub: &stubGenerator{responses: []string{keywordsReply}, errs: []error{nil, errors.New("rate limited")}}, calls: 2, reason: "Analysis failed: rate limited"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := NewScorer(tc.stub, nil, 0).Analyze(context.Background(), testProfile(), "desc")

			if got.MatchScore != 0 || got.Reasoning != tc.reason {
				t.Fatalf("unexpected result %+v", got)
			}
			if len(tc.stub.prompts) != tc.calls {
				t.Fatalf("expected %d calls, got %d", tc.calls, len(tc.stub.prompts))
			}
		})
	}
}

func TestAnalyzeFencedReplies(t *testing.T) {
	t.Parallel()

	plain := `{"match_score": 64, "is_junior_friendly": false, "missing_skills": ["Rust"], "reasoning": "ok"}`
	fenced := &stubGenerator{responses: []string{"```json\n" + keywordsReply + "\n```", "```json\n" + plain + "\n```"}}
	unfenced := &stubGenerator{responses: []string{keywordsReply, plain}}

	a := NewScorer(fenced, nil, 0).Analyze(context.Background(), testProfile(), "desc")
	b := NewScorer(unfenced, nil, 0).Analyze(context.Background(), testProfile(), "desc")

	if !reflect.DeepEqual(a, b) {
		t.Fatalf("fenced %+v differs from plain %+v", a, b)
	}
}

func TestParseResultClampsScore(t *testing.T) {
	t.Parallel()

	cases := map[string]int{
		`{"match_score": 150}`:   100,
		`{"match_score": -5}`:    0,
		`{"match_score": "85%"}`: 85,
		`{"match_score": 42.4}`:  42,
	}

	for raw, want := range cases {
		if got := parseResult(raw).MatchScore; got != want {
			t.Fatalf("parseResult(%s) score = %d, want %d", raw, got, want)
		}
	}
}

func TestAnalyzeWithoutProfile(t *testing.T) {
	t.Parallel()

	stub := &stubGenerator{}
	got := NewScorer(stub, nil, 0).Analyze(context.Background(), nil, "desc")

	if got.MatchScore != 0 || len(stub.prompts) != 0 {
		t.Fatalf("unexpected result %+v with %d calls", got, len(stub.prompts))
	}
}
