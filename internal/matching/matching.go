// Package matching scores a job description against a resume profile with
// two model calls: requirement extraction, then comparison.
package matching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/junior-hunter/internal/ai"
	"github.com/spigell/junior-hunter/internal/resume"
	"github.com/spigell/junior-hunter/internal/utils"
	"go.uber.org/zap"
)

const (
	ReasonNoKeywords    = "Failed to extract job keywords."
	ReasonInvalidSchema = "JSON parsing complete but schema was invalid."

	extractSystem = "You are a helpful assistant that extracts structured data from job descriptions."
	matchSystem   = "You are an expert technical recruiter."

	defaultMaxLogLength = 200
)

var (
	//go:embed keywords.md
	keywordsTemplate string

	//go:embed match.md
	matchTemplate string
)

// Result is the compatibility estimate for one description.
type Result struct {
	MatchScore       int      `json:"match_score"`
	IsJuniorFriendly bool     `json:"is_junior_friendly"`
	MissingSkills    []string `json:"missing_skills"`
	Reasoning        string   `json:"reasoning"`
}

// Failed is the zero-score result used whenever scoring cannot complete.
func Failed(reason string) Result {
	return Result{MissingSkills: []string{}, Reasoning: reason}
}

// Requirements is the decoded keyword extraction reply. It is forwarded to
// the comparison stage as returned, including keys beyond the ones asked for.
type Requirements map[string]any

// Scorer runs the two-stage match.
type Scorer struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewScorer(generator ai.Generator, logger *zap.Logger, maxLogLength int) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Scorer{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Analyze scores description against profile. It never fails: every error
// turns into a zero-score result whose reasoning says what went wrong.
func (s *Scorer) Analyze(ctx context.Context, profile *resume.Profile, description string) Result {
	if s.generator == nil || profile == nil {
		return Failed("Analysis failed: scorer is not configured")
	}

	reqs, err := s.extractRequirements(ctx, description)
	if err != nil {
		if errors.Is(err, ai.ErrNoJSON) {
			s.logger.Warn("job keyword extraction returned no json", zap.Error(err))
		} else {
			s.logger.Warn("job keyword extraction failed", zap.Error(err))
		}
		return Failed(ReasonNoKeywords)
	}

	result, err := s.compare(ctx, profile, reqs)
	if err != nil {
		s.logger.Warn("match comparison failed", zap.Error(err))
		return Failed(fmt.Sprintf("Analysis failed: %v", err))
	}

	s.logger.Debug("match scored",
		zap.Int("match_score", result.MatchScore),
		zap.Bool("junior_friendly", result.IsJuniorFriendly),
		zap.Strings("missing_skills", result.MissingSkills),
	)
	return result
}

func (s *Scorer) extractRequirements(ctx context.Context, description string) (Requirements, error) {
	prompt := strings.ReplaceAll(keywordsTemplate, "{{JOB_DESCRIPTION}}", strings.TrimSpace(description))

	raw, err := s.call(ctx, "keywords", extractSystem, prompt)
	if err != nil {
		return nil, err
	}

	var reqs Requirements
	if err := ai.DecodeJSON(raw, &reqs); err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: empty object", ai.ErrNoJSON)
	}
	return reqs, nil
}

func (s *Scorer) compare(ctx context.Context, profile *resume.Profile, reqs Requirements) (Result, error) {
	reqsJSON, err := json.Marshal(reqs)
	if err != nil {
		return Result{}, fmt.Errorf("marshal requirements: %w", err)
	}
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return Result{}, fmt.Errorf("marshal resume profile: %w", err)
	}

	prompt := strings.ReplaceAll(matchTemplate, "{{JOB_REQUIREMENTS}}", string(reqsJSON))
	prompt = strings.ReplaceAll(prompt, "{{RESUME_JSON}}", string(profileJSON))

	raw, err := s.call(ctx, "match", matchSystem, prompt)
	if err != nil {
		return Result{}, err
	}

	return parseResult(raw), nil
}

func (s *Scorer) call(ctx context.Context, stage, system, prompt string) (string, error) {
	s.logger.Debug("match request",
		zap.String("stage", stage),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, s.maxLogLen)),
	)

	raw, err := s.generator.GenerateJSON(ctx, system, prompt)
	if err != nil {
		return "", err
	}

	s.logger.Debug("match response",
		zap.String("stage", stage),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)
	return raw, nil
}

// parseResult reads the comparison reply. A reply without a usable
// match_score scores 0 with a diagnostic reasoning.
func parseResult(raw string) Result {
	var data map[string]any
	if err := ai.DecodeJSON(raw, &data); err != nil {
		data = map[string]any{}
	}

	result := Result{
		IsJuniorFriendly: ai.CoerceBool(data["is_junior_friendly"]),
		MissingSkills:    ai.CoerceStrings(data["missing_skills"]),
		Reasoning:        ai.CoerceString(data["reasoning"]),
	}

	score, ok := ai.CoerceInt(data["match_score"])
	if !ok {
		result.Reasoning = ReasonInvalidSchema
		return result
	}

	switch {
	case score < 0:
		score = 0
	case score > 100:
		score = 100
	}
	result.MatchScore = score

	return result
}
