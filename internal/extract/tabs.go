package extract

import (
	"context"
	"strings"
	"time"

	"github.com/spigell/junior-hunter/internal/pacing"
	"github.com/spigell/junior-hunter/internal/page"
	"go.uber.org/zap"
)

// Tabs switches between the tabs of a detail view.
type Tabs struct {
	link   string
	marker string
	wait   time.Duration
	pacer  pacing.Pacer
	logger *zap.Logger
}

// NewTabs creates a tab switcher. link is the selector of tab links and
// marker the class that flags the active tab container.
func NewTabs(link, marker string, wait time.Duration, pacer pacing.Pacer, logger *zap.Logger) *Tabs {
	if pacer == nil {
		pacer = pacing.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tabs{link: link, marker: marker, wait: wait, pacer: pacer, logger: logger}
}

// Activate makes the tab labelled label current. It clicks only when the
// tab's container does not carry the active marker already. The result
// reports whether the tab is now believed active.
func (t *Tabs) Activate(ctx context.Context, view page.Locator, label string) bool {
	tab := view.Locator(t.link).Filter(label).Last()
	if err := tab.WaitVisible(t.wait); err != nil {
		t.logger.Warn("tab not found", zap.String("tab", label), zap.Error(err))
		return false
	}

	if t.isActive(tab) {
		t.logger.Debug("tab already active", zap.String("tab", label))
		return true
	}

	if err := tab.Click(t.wait); err != nil {
		t.logger.Warn("failed to switch tab", zap.String("tab", label), zap.Error(err))
		return false
	}

	t.logger.Debug("switched tab", zap.String("tab", label))
	t.pacer.Pause(ctx, pacing.AfterTab)

	return true
}

func (t *Tabs) isActive(tab page.Locator) bool {
	if t.marker == "" {
		return false
	}
	for _, loc := range []page.Locator{tab.Parent(), tab} {
		class, err := loc.Attribute("class", t.wait)
		if err != nil {
			continue
		}
		for _, c := range strings.Fields(class) {
			if strings.EqualFold(c, t.marker) {
				return true
			}
		}
	}
	return false
}
