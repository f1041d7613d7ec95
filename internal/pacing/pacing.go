// Package pacing inserts randomized pauses between browser actions so the
// scan does not run at a fixed machine rhythm.
package pacing

import (
	"context"
	"time"

	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/utils"
	"go.uber.org/zap"
)

// Category selects which pause range applies.
type Category string

const (
	AfterClose Category = "after_close"
	AfterTab   Category = "after_tab"
	StuckView  Category = "stuck_view"
)

// Pacer pauses the sequential flow. Pause returns early when ctx is done.
type Pacer interface {
	Pause(ctx context.Context, category Category)
}

// Random pauses for a uniformly random duration within the configured range
// of each category.
type Random struct {
	ranges map[Category]config.Range
	logger *zap.Logger
	wait   func(context.Context, time.Duration) error
}

// New builds a pacer from the pause configuration. Disabled pauses yield a
// pacer that never sleeps.
func New(cfg *config.Pauses, logger *zap.Logger) Pacer {
	if cfg == nil || !cfg.Enabled {
		return Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ranges := map[Category]config.Range{}
	for category, r := range map[Category]*config.Range{
		AfterClose: cfg.AfterClose,
		AfterTab:   cfg.AfterTab,
		StuckView:  cfg.StuckView,
	} {
		if r != nil {
			ranges[category] = *r
		}
	}

	return &Random{ranges: ranges, logger: logger, wait: utils.WaitFor}
}

func (r *Random) Pause(ctx context.Context, category Category) {
	rng, ok := r.ranges[category]
	if !ok {
		return
	}

	d := utils.Between(rng.Min, rng.Max)
	r.logger.Debug("pausing", zap.String("category", string(category)), zap.Duration("duration", d))
	_ = r.wait(ctx, d)
}

// Nop never pauses.
type Nop struct{}

func (Nop) Pause(context.Context, Category) {}

// Recorder remembers requested pauses without sleeping.
type Recorder struct {
	Pauses []Category
}

func (r *Recorder) Pause(_ context.Context, category Category) {
	r.Pauses = append(r.Pauses, category)
}

// Count returns how many pauses of category were requested.
func (r *Recorder) Count(category Category) int {
	n := 0
	for _, p := range r.Pauses {
		if p == category {
			n++
		}
	}
	return n
}
