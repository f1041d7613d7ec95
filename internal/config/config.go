// Package config holds the run configuration. A Config is built once at
// startup, validated, and passed explicitly to every component.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	StartURL string    `mapstructure:"start-url" validate:"omitempty,url"`
	Browser  *Browser  `mapstructure:"browser" validate:"required"`
	Board    *Board    `mapstructure:"board" validate:"required"`
	Fields   *Fields   `mapstructure:"fields" validate:"required"`
	Chart    *Chart    `mapstructure:"chart" validate:"required"`
	Waits    *Waits    `mapstructure:"waits" validate:"required"`
	Pauses   *Pauses   `mapstructure:"pauses" validate:"required"`
	Policy   *Policy   `mapstructure:"policy" validate:"required"`
	Results  *Results  `mapstructure:"results" validate:"required"`
	Resume   *Resume   `mapstructure:"resume"`
	AI       *AI       `mapstructure:"ai"`
	OCR      *OCR      `mapstructure:"ocr" validate:"required"`
	Telegram *Telegram `mapstructure:"telegram"`
}

type Browser struct {
	Headless  bool          `mapstructure:"headless"`
	SlowMo    time.Duration `mapstructure:"slow-mo"`
	UserAgent string        `mapstructure:"user-agent"`
	Width     int           `mapstructure:"width" validate:"gte=0"`
	Height    int           `mapstructure:"height" validate:"gte=0"`
}

// Board describes the results page and the detail view of the job board.
type Board struct {
	Listing        string   `mapstructure:"listing" validate:"required"`
	DetailView     string   `mapstructure:"detail-view" validate:"required"`
	CloseControls  []string `mapstructure:"close-controls" validate:"required,min=1"`
	TabLink        string   `mapstructure:"tab-link" validate:"required"`
	ActiveMarker   string   `mapstructure:"active-marker" validate:"required"`
	PlaceholderFmt string   `mapstructure:"placeholder-title"`
}

// Field describes where one named field lives in the detail view.
type Field struct {
	Label     string   `mapstructure:"label" validate:"required"`
	Tab       string   `mapstructure:"tab"`
	Selectors []string `mapstructure:"selectors"`
	MinLength int      `mapstructure:"min-length" validate:"gte=0"`
}

type Fields struct {
	Duration    *Field `mapstructure:"duration" validate:"required"`
	Description *Field `mapstructure:"description" validate:"required"`
}

type Chart struct {
	Tab         string   `mapstructure:"tab" validate:"required"`
	Header      string   `mapstructure:"header" validate:"required"`
	Containers  []string `mapstructure:"containers" validate:"required,min=1"`
	SnapshotDir string   `mapstructure:"snapshot-dir"`
}

type Waits struct {
	Strategy   time.Duration `mapstructure:"strategy" validate:"gt=0,lte=5m"`
	DetailView time.Duration `mapstructure:"detail-view" validate:"gt=0"`
	Close      time.Duration `mapstructure:"close" validate:"gt=0"`
	Action     time.Duration `mapstructure:"action" validate:"gt=0"`
}

// Range is a closed interval of pause durations.
type Range struct {
	Min time.Duration `mapstructure:"min" validate:"gte=0"`
	Max time.Duration `mapstructure:"max" validate:"gtefield=Min"`
}

type Pauses struct {
	Enabled    bool   `mapstructure:"enabled"`
	AfterClose *Range `mapstructure:"after-close" validate:"required"`
	AfterTab   *Range `mapstructure:"after-tab" validate:"required"`
	StuckView  *Range `mapstructure:"stuck-view" validate:"required"`
}

type Policy struct {
	MinimumJuniorScore float64 `mapstructure:"minimum-junior-score" validate:"gte=0"`
	MinimumMatchScore  int     `mapstructure:"minimum-match-score" validate:"gte=0,lte=100"`
}

type Results struct {
	Log      string `mapstructure:"log" validate:"required"`
	Workbook string `mapstructure:"workbook"`
}

type Resume struct {
	Path string `mapstructure:"path"`
}

type AI struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider" validate:"omitempty,oneof=gemini openai"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Gemini       *Gemini       `mapstructure:"gemini"`
	OpenAI       *OpenAI       `mapstructure:"openai"`
}

type Gemini struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries" validate:"gte=0"`
}

type OpenAI struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

type OCR struct {
	Languages []string `mapstructure:"languages"`
}

type Telegram struct {
	Enabled   bool   `mapstructure:"enabled"`
	TokenFile string `mapstructure:"token-file"`
	ChatID    int64  `mapstructure:"chat-id"`
}

// Default returns the configuration used when no file overrides a key.
func Default() *Config {
	return &Config{
		StartURL: "https://waterlooworks.uwaterloo.ca/waterloo.htm",
		Browser: &Browser{
			SlowMo:    100 * time.Millisecond,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			Width:     1280,
			Height:    720,
		},
		Board: &Board{
			Listing:    "a.job-title-link",
			DetailView: "div.modal.show, div[role='dialog']",
			CloseControls: []string{
				"button.close",
				"button[aria-label='Close']",
				"button:has-text('Close')",
				".modal-header .btn-close",
			},
			TabLink:        "a",
			ActiveMarker:   "active",
			PlaceholderFmt: "Job #%d",
		},
		Fields: &Fields{
			Duration: &Field{
				Label: "Work Term Duration",
				Tab:   "Job Posting Information",
				Selectors: []string{
					"tr:has-text('Work Term Duration')",
					"div.field:has-text('Work Term Duration')",
				},
			},
			Description: &Field{
				Label: "Job Description",
				Tab:   "Job Posting Information",
				Selectors: []string{
					"[aria-labelledby*='job-posting-information']",
					"#postingDiv",
					".tab-pane.active",
					".tab-content",
					"[data-tab-content]",
				},
				MinLength: 10,
			},
		},
		Chart: &Chart{
			Tab:    "Work Term Ratings",
			Header: "Hires by Student Work Term Number",
			Containers: []string{
				"div.highcharts-container",
				"div.chart-container",
				"figure",
				"svg",
				"canvas",
				"img.chart",
			},
		},
		Waits: &Waits{
			Strategy:   3 * time.Second,
			DetailView: 5 * time.Second,
			Close:      5 * time.Second,
			Action:     2 * time.Second,
		},
		Pauses: &Pauses{
			Enabled:    true,
			AfterClose: &Range{Min: time.Second, Max: 2500 * time.Millisecond},
			AfterTab:   &Range{Min: 300 * time.Millisecond, Max: 800 * time.Millisecond},
			StuckView:  &Range{Min: 500 * time.Millisecond, Max: time.Second},
		},
		Policy: &Policy{
			MinimumJuniorScore: 30,
			MinimumMatchScore:  50,
		},
		Results: &Results{
			Log: "junior_jobs.txt",
		},
		Resume: &Resume{},
		AI: &AI{
			Provider:     "gemini",
			MaxLogLength: 200,
			Timeout:      60 * time.Second,
			Gemini:       &Gemini{Model: "gemini-2.5-flash", MaxRetries: 2},
			OpenAI:       &OpenAI{Model: "gpt-4o"},
		},
		OCR:      &OCR{Languages: []string{"eng"}},
		Telegram: &Telegram{},
	}
}

// Validate checks struct constraints and the few cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.AI != nil && c.AI.Enabled {
		switch strings.ToLower(strings.TrimSpace(c.AI.Provider)) {
		case "", "gemini":
			if c.AI.Gemini == nil || strings.TrimSpace(c.AI.Gemini.Model) == "" {
				return fmt.Errorf("invalid config: gemini model is required when ai is enabled")
			}
		case "openai":
			if c.AI.OpenAI == nil || strings.TrimSpace(c.AI.OpenAI.Model) == "" {
				return fmt.Errorf("invalid config: openai model is required when ai is enabled")
			}
		}
	}

	if c.Telegram != nil && c.Telegram.Enabled && c.Telegram.ChatID == 0 {
		return fmt.Errorf("invalid config: telegram chat-id is required when telegram is enabled")
	}

	return nil
}
