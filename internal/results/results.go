// Package results persists accepted postings. The primary sink is an
// append-only text log that grows across runs; other sinks mirror it.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/junior-hunter/internal/matching"
	"github.com/spigell/junior-hunter/internal/signal"
	"github.com/spigell/junior-hunter/internal/utils"
	"go.uber.org/zap"
)

// Posting is an accepted posting. It is written once and never changed.
type Posting struct {
	Title      string
	Seniority  signal.Seniority
	Duration   signal.DurationCategory
	Match      *matching.Result
	AcceptedAt time.Time
}

// Line renders the posting in the results log format.
func (p Posting) Line() string {
	line := fmt.Sprintf("%s | Score: %.1f%% | First: %.1f%% | Second: %.1f%% | Duration: %s",
		OneLineTitle(p.Title),
		p.Seniority.Total(),
		p.Seniority.First,
		p.Seniority.Second,
		p.Duration,
	)
	if p.Match != nil {
		line += fmt.Sprintf(" | Match: %d%% | %s", p.Match.MatchScore, utils.OneLine(p.Match.Reasoning))
	}
	return line
}

// OneLineTitle keeps a title on a single log line.
func OneLineTitle(title string) string {
	if t := utils.OneLine(title); t != "" {
		return t
	}
	return "Untitled"
}

// RunMarker is the line written when a run starts.
func RunMarker(runID string, at time.Time) string {
	return fmt.Sprintf("=== Run %s started at %s ===", runID, at.Format(time.RFC3339))
}

// Sink stores accepted postings.
type Sink interface {
	Start(ctx context.Context, runID string, at time.Time) error
	Append(ctx context.Context, p Posting) error
	Close() error
}

// Multi writes to a primary sink and best-effort mirrors. Only primary
// failures are returned.
type Multi struct {
	primary Sink
	mirrors []Sink
	logger  *zap.Logger
}

func NewMulti(logger *zap.Logger, primary Sink, mirrors ...Sink) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{primary: primary, mirrors: mirrors, logger: logger}
}

func (m *Multi) Start(ctx context.Context, runID string, at time.Time) error {
	if err := m.primary.Start(ctx, runID, at); err != nil {
		return err
	}
	for _, s := range m.mirrors {
		if err := s.Start(ctx, runID, at); err != nil {
			m.logger.Warn("result mirror failed to start", zap.String("sink", sinkName(s)), zap.Error(err))
		}
	}
	return nil
}

func (m *Multi) Append(ctx context.Context, p Posting) error {
	if err := m.primary.Append(ctx, p); err != nil {
		return err
	}
	for _, s := range m.mirrors {
		if err := s.Append(ctx, p); err != nil {
			m.logger.Warn("result mirror failed to append", zap.String("sink", sinkName(s)), zap.Error(err))
		}
	}
	return nil
}

func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.mirrors {
		if err := s.Close(); err != nil {
			m.logger.Warn("result mirror failed to close", zap.String("sink", sinkName(s)), zap.Error(err))
		}
	}
	if err := m.primary.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func sinkName(s Sink) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", s), "*")
}
