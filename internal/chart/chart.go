// Package chart reads the hiring-history chart of a detail view. The chart is
// read from DOM text when it carries percentages and from an OCR pass over a
// snapshot otherwise.
package chart

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/extract"
	"github.com/spigell/junior-hunter/internal/ocr"
	"github.com/spigell/junior-hunter/internal/page"
	"github.com/spigell/junior-hunter/internal/signal"
	"go.uber.org/zap"
)

// Source tells where a signal came from.
type Source string

const (
	SourceDOM  Source = "dom"
	SourceOCR  Source = "ocr"
	SourceNone Source = "none"
)

// Signal is the seniority split read from the chart.
type Signal struct {
	Seniority signal.Seniority
	Source    Source
}

// Reader reads chart signals.
type Reader struct {
	cfg        *config.Chart
	tabs       *extract.Tabs
	recognizer ocr.Recognizer
	wait       time.Duration
	logger     *zap.Logger
}

// New creates a chart reader. A nil recognizer disables the OCR path.
func New(cfg *config.Chart, tabs *extract.Tabs, recognizer ocr.Recognizer, wait time.Duration, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{cfg: cfg, tabs: tabs, recognizer: recognizer, wait: wait, logger: logger}
}

// Read returns the chart signal of view. It never fails; anything that goes
// wrong yields zero percentages with SourceNone.
func (r *Reader) Read(ctx context.Context, view page.Locator) Signal {
	if r.tabs != nil && r.cfg.Tab != "" {
		r.tabs.Activate(ctx, view, r.cfg.Tab)
	}

	section := r.locateSection(view)

	if s, ok := r.fromDOM(section, view); ok {
		r.logger.Info("chart read from page text",
			zap.Float64("first", s.First),
			zap.Float64("second", s.Second),
		)
		return Signal{Seniority: s, Source: SourceDOM}
	}

	if r.recognizer == nil {
		r.logger.Warn("chart has no readable text and ocr is disabled")
		return Signal{Source: SourceNone}
	}

	image, ok := r.snapshot(view)
	if !ok {
		return Signal{Source: SourceNone}
	}

	lines, err := r.recognizer.Lines(ctx, image)
	if err != nil {
		r.logger.Warn("chart recognition failed", zap.Error(err))
		return Signal{Source: SourceNone}
	}
	if len(lines) == 0 {
		r.logger.Warn("chart recognition returned no text")
		return Signal{Source: SourceNone}
	}

	s, found := ParseOCRLines(lines)
	if !found {
		r.logger.Warn("no work term values in recognized chart text", zap.Int("lines", len(lines)))
		return Signal{Source: SourceNone}
	}

	r.logger.Info("chart read with ocr",
		zap.Float64("first", s.First),
		zap.Float64("second", s.Second),
	)
	return Signal{Seniority: s, Source: SourceOCR}
}

func (r *Reader) locateSection(view page.Locator) page.Locator {
	if r.cfg.Header == "" {
		return nil
	}

	header := view.Locator(fmt.Sprintf("text=%s", r.cfg.Header)).First()
	if err := header.WaitVisible(r.wait); err != nil {
		r.logger.Debug("chart header not visible", zap.String("header", r.cfg.Header), zap.Error(err))
		return nil
	}
	if err := header.ScrollIntoView(r.wait); err != nil {
		r.logger.Debug("failed to scroll to chart header", zap.Error(err))
	}

	return header.Parent()
}

func (r *Reader) fromDOM(section, view page.Locator) (signal.Seniority, bool) {
	for _, loc := range []page.Locator{section, view} {
		if loc == nil {
			continue
		}
		text, err := loc.InnerText(r.wait)
		if err != nil {
			continue
		}
		if signal.HasSeniorityPercent(text) {
			return signal.ParseSeniorityText(text), true
		}
	}
	return signal.Seniority{}, false
}

func (r *Reader) snapshot(view page.Locator) ([]byte, bool) {
	var (
		image []byte
		from  string
	)

	for _, sel := range r.cfg.Containers {
		loc := view.Locator(sel).First()
		if !loc.IsVisible() {
			continue
		}
		shot, err := loc.Screenshot(r.wait)
		if err != nil {
			r.logger.Debug("chart container snapshot failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		image, from = shot, sel
		break
	}

	if image == nil {
		shot, err := view.Screenshot(r.wait)
		if err != nil {
			r.logger.Warn("failed to capture chart snapshot", zap.Error(err))
			return nil, false
		}
		image, from = shot, "detail view"
		r.logger.Info("no chart container found, captured the whole detail view")
	}

	r.logger.Debug("captured chart snapshot", zap.String("from", from), zap.Int("bytes", len(image)))
	r.keep(image)

	return image, true
}

func (r *Reader) keep(image []byte) {
	if r.cfg.SnapshotDir == "" {
		return
	}
	if err := os.MkdirAll(r.cfg.SnapshotDir, 0o755); err != nil {
		r.logger.Warn("failed to create snapshot dir", zap.Error(err))
		return
	}

	path := filepath.Join(r.cfg.SnapshotDir, fmt.Sprintf("chart-%s.png", uuid.NewString()))
	if err := os.WriteFile(path, image, 0o644); err != nil {
		r.logger.Warn("failed to save chart snapshot", zap.Error(err))
		return
	}
	r.logger.Debug("saved chart snapshot", zap.String("path", path))
}
