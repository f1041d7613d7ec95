// Package scan drives the per-listing pipeline across a results page: open
// the detail view, extract and score, apply the policy, persist, and always
// close the view before the next listing.
package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spigell/junior-hunter/internal/chart"
	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/extract"
	"github.com/spigell/junior-hunter/internal/filtering"
	"github.com/spigell/junior-hunter/internal/logger"
	"github.com/spigell/junior-hunter/internal/matching"
	"github.com/spigell/junior-hunter/internal/pacing"
	"github.com/spigell/junior-hunter/internal/page"
	"github.com/spigell/junior-hunter/internal/results"
	"github.com/spigell/junior-hunter/internal/resume"
	"github.com/spigell/junior-hunter/internal/signal"
	"go.uber.org/zap"
)

const (
	fieldDuration    = "duration"
	fieldDescription = "description"

	reasonNoDescription = "Job description not found."
)

// FieldExtractor reads a named field from a detail view.
type FieldExtractor interface {
	Extract(ctx context.Context, view page.Locator, spec extract.FieldSpec) extract.Field
}

// ChartReader reads the hiring-history chart of a detail view.
type ChartReader interface {
	Read(ctx context.Context, view page.Locator) chart.Signal
}

// MatchScorer compares a description with the resume profile.
type MatchScorer interface {
	Analyze(ctx context.Context, profile *resume.Profile, description string) matching.Result
}

// Operator decides whether another page is scanned.
type Operator interface {
	NextPage(ctx context.Context, scanned int) (bool, error)
}

// Deps aggregates the collaborators of a Scanner. Scorer and Profile are
// optional; without both, match scoring is skipped.
type Deps struct {
	Config    *config.Config
	Extractor FieldExtractor
	Chart     ChartReader
	Scorer    MatchScorer
	Profile   *resume.Profile
	Filters   []filtering.Filter
	Sink      results.Sink
	Pacer     pacing.Pacer
	Logger    *zap.Logger
	Now       func() time.Time
}

// Scanner processes listings strictly one at a time.
type Scanner struct {
	deps        Deps
	board       *config.Board
	waits       *config.Waits
	duration    extract.FieldSpec
	description extract.FieldSpec
	logger      *zap.Logger
}

func New(deps Deps) (*Scanner, error) {
	if deps.Config == nil {
		return nil, errors.New("config is required")
	}
	if deps.Extractor == nil || deps.Chart == nil || deps.Sink == nil {
		return nil, errors.New("extractor, chart reader and sink are required")
	}
	if deps.Pacer == nil {
		deps.Pacer = pacing.Nop{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Profile == nil {
		deps.Scorer = nil
	}

	return &Scanner{
		deps:        deps,
		board:       deps.Config.Board,
		waits:       deps.Config.Waits,
		duration:    extract.SpecFromConfig(fieldDuration, deps.Config.Fields.Duration),
		description: extract.SpecFromConfig(fieldDescription, deps.Config.Fields.Description),
		logger:      logger.WithFields(deps.Logger),
	}, nil
}

// Run scans the current page, then lets op decide whether to continue on a
// page the operator navigated to. Failures of a whole page end the run
// without an error; only cancellation is returned.
func (s *Scanner) Run(ctx context.Context, p page.Page, op Operator) (Summary, error) {
	var summary Summary

	for n := 1; ; n++ {
		stats, err := s.scanPageSafely(ctx, p)
		summary.Pages++
		summary.merge(stats)

		if ctxErr := ctx.Err(); ctxErr != nil {
			s.logger.Info("run interrupted", zap.Int("page", n))
			return summary, ctxErr
		}
		if err != nil {
			s.logger.Error("page scan failed, stopping", zap.Int("page", n), zap.Error(err))
			return summary, nil
		}

		next, err := op.NextPage(ctx, n)
		if err != nil {
			s.logger.Warn("page prompt failed, stopping", zap.Error(err))
			return summary, ctx.Err()
		}
		if !next {
			return summary, nil
		}
	}
}

func (s *Scanner) scanPageSafely(ctx context.Context, p page.Page) (stats PageStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page scan panicked: %v", r)
		}
	}()
	return s.ScanPage(ctx, p)
}

// ScanPage processes every listing present when the scan starts. Each
// iteration re-resolves its listing by index; a shrunk list ends the page.
func (s *Scanner) ScanPage(ctx context.Context, p page.Page) (PageStats, error) {
	var stats PageStats

	listings := p.Locator(s.board.Listing)
	count, err := listings.Count()
	if err != nil {
		return stats, fmt.Errorf("count listings: %w", err)
	}

	s.logger.Info("scanning results page", zap.Int("listings", count))
	if count == 0 {
		s.logger.Warn("no listings found", zap.String("selector", s.board.Listing))
	}

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			s.logger.Info("scan interrupted", zap.Int(logger.FieldListingIndex, i))
			break
		}

		if n, err := listings.Count(); err != nil || i >= n {
			s.logger.Warn("listing list shrank, ending page", zap.Int(logger.FieldListingIndex, i), zap.Int("listings", n))
			break
		}

		stats.add(s.processListing(ctx, p, i))
	}

	s.logger.Info("results page scanned", stats.fields()...)
	return stats, ctx.Err()
}

func (s *Scanner) processListing(ctx context.Context, p page.Page, i int) (outcome Outcome) {
	listing := p.Locator(s.board.Listing).Nth(i)
	log := logger.WithListing(s.logger, i, "")

	defer func() {
		if r := recover(); r != nil {
			log.Error("listing failed", zap.Any("panic", r), zap.Stack("stack"))
			outcome = OutcomeFailed
		}
		s.close(context.WithoutCancel(ctx), p, log)
		s.deps.Pacer.Pause(ctx, pacing.AfterClose)
	}()

	title := s.title(listing, i)
	log = logger.WithListing(s.logger, i, title)

	err := s.evaluate(ctx, p, listing, title, log)

	var rejected *RejectionError
	switch {
	case err == nil:
		return OutcomeAccepted
	case errors.As(err, &rejected):
		log.Info("posting rejected",
			zap.String("stage", string(rejected.Stage)),
			zap.String("filter", rejected.Filter),
			zap.String("reason", rejected.Reason),
		)
		return OutcomeRejected
	case errors.Is(err, errNotOpened):
		log.Warn("skipping listing", zap.Error(err))
		return OutcomeSkipped
	case errors.Is(err, errInterrupted):
		log.Info("listing interrupted", zap.Error(err))
		return OutcomeSkipped
	default:
		log.Error("listing failed", zap.Error(err))
		return OutcomeFailed
	}
}

var (
	errNotOpened   = errors.New("detail view did not open")
	errInterrupted = errors.New("listing interrupted")
)

func interrupted(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errInterrupted, err)
	}
	return nil
}

func (s *Scanner) evaluate(ctx context.Context, p page.Page, listing page.Locator, title string, log *zap.Logger) error {
	if err := listing.ScrollIntoView(s.waits.Action); err != nil {
		log.Debug("failed to scroll to listing", zap.Error(err))
	}
	if err := listing.Click(s.waits.Action); err != nil {
		return fmt.Errorf("%w: click listing: %v", errNotOpened, err)
	}

	view := p.Locator(s.board.DetailView).First()
	if err := view.WaitVisible(s.waits.DetailView); err != nil {
		return fmt.Errorf("%w: %v", errNotOpened, err)
	}
	log.Debug("detail view opened")

	cand := &filtering.Candidate{Title: title}

	durationField := s.deps.Extractor.Extract(ctx, view, s.duration)
	cand.Duration = signal.NormalizeDuration(durationField.Value)
	log.Info("duration extracted",
		zap.String("category", cand.Duration.String()),
		zap.String(logger.FieldStrategy, durationField.Strategy),
	)
	if v := filtering.Check(s.deps.Filters, filtering.StageDuration, cand, log); v != nil {
		return rejection(v)
	}

	if s.deps.Scorer != nil {
		result := s.match(ctx, view, log)
		cand.Match = &result
		if v := filtering.Check(s.deps.Filters, filtering.StageMatch, cand, log); v != nil {
			return rejection(v)
		}
	}

	if err := interrupted(ctx); err != nil {
		return err
	}

	sig := s.deps.Chart.Read(ctx, view)
	cand.Seniority = &sig.Seniority
	log.Info("chart signal",
		zap.Float64("first", sig.Seniority.First),
		zap.Float64("second", sig.Seniority.Second),
		zap.Float64("total", sig.Seniority.Total()),
		zap.String("source", string(sig.Source)),
	)
	if v := filtering.Check(s.deps.Filters, filtering.StageJunior, cand, log); v != nil {
		return rejection(v)
	}

	posting := results.Posting{
		Title:      title,
		Seniority:  sig.Seniority,
		Duration:   cand.Duration,
		Match:      cand.Match,
		AcceptedAt: s.deps.Now(),
	}
	// an interrupted listing is never persisted
	if err := interrupted(ctx); err != nil {
		return err
	}
	if err := s.deps.Sink.Append(ctx, posting); err != nil {
		return fmt.Errorf("persist accepted posting: %w", err)
	}

	log.Info("posting accepted", zap.String("line", posting.Line()))
	return nil
}

func (s *Scanner) match(ctx context.Context, view page.Locator, log *zap.Logger) matching.Result {
	desc := s.deps.Extractor.Extract(ctx, view, s.description)
	if !desc.Found() {
		log.Warn("no description to score")
		return matching.Failed(reasonNoDescription)
	}

	result := s.deps.Scorer.Analyze(ctx, s.deps.Profile, desc.Value)
	log.Info("match scored",
		zap.Int("match_score", result.MatchScore),
		zap.String("reasoning", result.Reasoning),
	)
	return result
}

func (s *Scanner) title(listing page.Locator, i int) string {
	text, err := listing.InnerText(s.waits.Action)
	if t := strings.Join(strings.Fields(text), " "); err == nil && t != "" {
		return t
	}

	format := s.board.PlaceholderFmt
	if format == "" {
		format = "Job #%d"
	}
	return fmt.Sprintf(format, i+1)
}
