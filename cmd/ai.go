package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spigell/junior-hunter/internal/ai"
	"github.com/spigell/junior-hunter/internal/ai/gemini"
	"github.com/spigell/junior-hunter/internal/ai/openai"
	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/logger"
	"github.com/spigell/junior-hunter/internal/resume"
	"github.com/spigell/junior-hunter/internal/secrets"
	"go.uber.org/zap"
)

func newGenerator(ctx context.Context, cfg *config.AI, log *zap.Logger) (ai.Generator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai is not configured")
	}

	var generator ai.Generator

	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", gemini.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: cfg.Gemini.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		genLogger := log.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

		g, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}
		generator = g
	case openai.Provider:
		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: cfg.OpenAI.APIKeyFile,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}

		g, err := openai.NewGenerator(apiKey, cfg.OpenAI.Model, log)
		if err != nil {
			return nil, err
		}
		generator = g
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	return ai.Bounded{Generator: generator, Timeout: cfg.Timeout}, nil
}

// parseResumeFile converts a resume document and parses it into a Profile.
func parseResumeFile(ctx context.Context, path string, generator ai.Generator, maxLogLength int, log *zap.Logger) (*resume.Profile, error) {
	text, err := resume.Convert(path)
	if err != nil {
		return nil, fmt.Errorf("converting resume %s: %w", path, err)
	}

	log.Info("resume converted", zap.String("path", path), zap.Int("length", len(text)))

	parserLogger := logger.WithAI(log, "", generator.Model())
	profile, err := resume.NewParser(generator, parserLogger, maxLogLength).Parse(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("parsing resume %s: %w", path, err)
	}

	return profile, nil
}
