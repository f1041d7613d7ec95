package resume

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/junior-hunter/internal/ai"
	"github.com/spigell/junior-hunter/internal/utils"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"
)

const (
	systemPrompt        = "You are a helpful assistant that extracts structured data from resumes."
	defaultMaxLogLength = 200
)

var (
	//go:embed prompt.md
	promptTemplate string

	//go:embed schema.json
	profileSchema string
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation of a parsed profile.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "resume profile does not match schema: " + strings.Join(parts, "; ")
}

// Parser builds a Profile from resume text with one model call.
type Parser struct {
	generator ai.Generator
	logger    *zap.Logger
	maxLogLen int
}

func NewParser(generator ai.Generator, logger *zap.Logger, maxLogLength int) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Parser{generator: generator, logger: logger, maxLogLen: maxLogLength}
}

// Parse asks the model for the profile JSON, validates it against the
// profile schema and fills absent fields with empty values.
func (p *Parser) Parse(ctx context.Context, text string) (*Profile, error) {
	if p.generator == nil {
		return nil, errors.New("resume parser has no generator")
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyDocument
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{RESUME_TEXT}}", text)

	p.logger.Debug("resume parse request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, p.maxLogLen)),
	)

	raw, err := p.generator.GenerateJSON(ctx, systemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("parse resume: %w", err)
	}

	p.logger.Debug("resume parse response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, p.maxLogLen)),
	)

	cleaned := ai.ExtractJSON(raw)
	if cleaned == "" {
		return nil, ai.ErrNoJSON
	}

	if err := ValidateJSON(cleaned); err != nil {
		return nil, err
	}

	var profile Profile
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		return nil, fmt.Errorf("decode resume profile: %w", err)
	}
	profile.Normalize()

	p.logger.Info("resume parsed",
		zap.String("name", profile.PersonalInfo.Name),
		zap.Int("skills", len(profile.Skills)),
		zap.Int("experience", len(profile.WorkExperience)),
	)

	return &profile, nil
}

// ValidateJSON checks a profile document against the embedded schema.
func ValidateJSON(document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(profileSchema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("validate resume profile: %w", err)
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return validationErr
}
