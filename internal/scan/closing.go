package scan

import (
	"context"

	"github.com/spigell/junior-hunter/internal/pacing"
	"github.com/spigell/junior-hunter/internal/page"
	"go.uber.org/zap"
)

// close dismisses the detail view. It tries the close controls, falls back
// to Escape and never blocks past the configured close wait.
func (s *Scanner) close(ctx context.Context, p page.Page, log *zap.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("closing detail view panicked", zap.Any("panic", r))
		}
	}()

	log.Debug("closing detail view")

	view := p.Locator(s.board.DetailView).First()

	clicked := false
	for _, sel := range s.board.CloseControls {
		btn := view.Locator(sel).First()
		if !btn.IsVisible() {
			continue
		}
		if err := btn.Click(s.waits.Action); err != nil {
			log.Debug("close control click failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		clicked = true
		break
	}

	if !clicked {
		log.Debug("no close control, pressing escape")
		if err := p.Press(page.KeyEscape); err != nil {
			log.Warn("failed to press escape", zap.Error(err))
		}
	}

	if err := view.WaitHidden(s.waits.Close); err != nil {
		log.Warn("detail view still open, pressing escape again", zap.Error(err))
		if err := p.Press(page.KeyEscape); err != nil {
			log.Warn("failed to press escape", zap.Error(err))
		}
		s.deps.Pacer.Pause(ctx, pacing.StuckView)
	}
}
