package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Fatalf("default config must be valid: %v", err)
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(map[string]any{
		"browser": map[string]any{"headless": true},
		"board": map[string]any{
			"close-controls": []any{"button.dismiss"},
		},
		"waits": map[string]any{"strategy": "1500ms"},
		"policy": map[string]any{
			"minimum-junior-score": "25",
		},
		"ocr": map[string]any{"languages": "eng,fra"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Browser.Headless {
		t.Fatalf("expected headless override")
	}
	if cfg.Browser.Width != 1280 {
		t.Fatalf("expected default width to survive, got %d", cfg.Browser.Width)
	}
	if got := cfg.Board.CloseControls; len(got) != 1 || got[0] != "button.dismiss" {
		t.Fatalf("expected close controls to be replaced, got %v", got)
	}
	if cfg.Board.Listing != "a.job-title-link" {
		t.Fatalf("expected default listing selector, got %q", cfg.Board.Listing)
	}
	if cfg.Waits.Strategy != 1500*time.Millisecond {
		t.Fatalf("expected 1.5s strategy wait, got %s", cfg.Waits.Strategy)
	}
	if cfg.Waits.Close != 5*time.Second {
		t.Fatalf("expected default close wait, got %s", cfg.Waits.Close)
	}
	if cfg.Policy.MinimumJuniorScore != 25 {
		t.Fatalf("expected junior score 25, got %v", cfg.Policy.MinimumJuniorScore)
	}
	if cfg.Policy.MinimumMatchScore != 50 {
		t.Fatalf("expected default match score, got %d", cfg.Policy.MinimumMatchScore)
	}
	if got := strings.Join(cfg.OCR.Languages, "+"); got != "eng+fra" {
		t.Fatalf("unexpected ocr languages %q", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		settings map[string]any
		want     string
	}{
		{
			name:     "match score above 100",
			settings: map[string]any{"policy": map[string]any{"minimum-match-score": 150}},
			want:     "MinimumMatchScore",
		},
		{
			name:     "empty listing selector",
			settings: map[string]any{"board": map[string]any{"listing": ""}},
			want:     "Listing",
		},
		{
			name: "inverted pause range",
			settings: map[string]any{"pauses": map[string]any{
				"after-close": map[string]any{"min": "3s", "max": "1s"},
			}},
			want: "Max",
		},
		{
			name:     "telegram without chat",
			settings: map[string]any{"telegram": map[string]any{"enabled": true}},
			want:     "chat-id",
		},
		{
			name:     "unknown provider",
			settings: map[string]any{"ai": map[string]any{"provider": "claude"}},
			want:     "Provider",
		},
		{
			name:     "bad duration",
			settings: map[string]any{"waits": map[string]any{"close": "soon"}},
			want:     "decoding config",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(tc.settings)
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error to mention %q, got %v", tc.want, err)
			}
		})
	}
}
