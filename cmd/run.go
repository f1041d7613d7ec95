package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/junior-hunter/internal/browser"
	"github.com/spigell/junior-hunter/internal/chart"
	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/extract"
	"github.com/spigell/junior-hunter/internal/filtering"
	"github.com/spigell/junior-hunter/internal/logger"
	"github.com/spigell/junior-hunter/internal/matching"
	"github.com/spigell/junior-hunter/internal/notify"
	"github.com/spigell/junior-hunter/internal/ocr"
	"github.com/spigell/junior-hunter/internal/operator"
	"github.com/spigell/junior-hunter/internal/pacing"
	"github.com/spigell/junior-hunter/internal/results"
	"github.com/spigell/junior-hunter/internal/resume"
	"github.com/spigell/junior-hunter/internal/scan"
	"github.com/spigell/junior-hunter/internal/secrets"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the job board, wait for login and scan the search results",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("duration", "", "preferred work term length: 4, 8 or any. Asked interactively when unset")
	runCmd.Flags().StringP("resume", "r", "", "resume file (pdf, docx, txt). Enables match scoring")
	runCmd.Flags().Bool("headless", false, "run the browser without a window")
	runCmd.Flags().BoolP("auto-continue", "y", false, "do not prompt between pages and scan only the current one")

	viper.BindPFlag("resume.path", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("browser.headless", runCmd.Flags().Lookup("headless"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg, err := getConfig()
	if err != nil {
		log.Error("getting a config", zap.Error(err))
		return err
	}

	if cmd.Flags().Changed("resume") {
		cfg.AI.Enabled = true
	}

	runID := uuid.NewString()
	log = logger.WithFields(log, zap.String(logger.FieldRunID, runID))

	log.Info("starting the junior-hunter", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(cfg, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	scorer, profile := prepareScoring(ctx, cfg, log)

	session, err := browser.Launch(cfg.Browser, log)
	if err != nil {
		log.Error("launching browser", zap.Error(err))
		return err
	}
	defer session.Close()

	p := session.Page()
	if cfg.StartURL != "" {
		if err := p.Goto(cfg.StartURL); err != nil {
			log.Error("opening start page", zap.Error(err))
			return err
		}
	}

	console := operator.NewConsole()

	if err := console.WaitForLogin(ctx); err != nil {
		log.Info("exiting", zap.String("reason", "login was not confirmed"), zap.Error(err))
		return nil
	}

	pref, err := durationPreference(ctx, cmd, console)
	if err != nil {
		log.Info("exiting", zap.String("reason", "no duration preference"), zap.Error(err))
		return nil
	}

	filters := filtering.DefaultSteps(cfg.Policy, pref, scorer != nil)
	if err := filtering.Validate(filters); err != nil {
		log.Error("invalid filters", zap.Error(err))
		return err
	}
	for _, st := range filtering.Describe(filters) {
		log.Info("filter configured",
			zap.String("name", st.Name),
			zap.Bool("enabled", st.Enabled),
			zap.String("reason", st.Reason),
			zap.Any("details", st.Details),
		)
	}

	sink, err := openSinks(cfg, log)
	if err != nil {
		log.Error("opening results", zap.Error(err))
		return err
	}
	defer func() {
		if err := sink.Close(); err != nil {
			log.Warn("closing results", zap.Error(err))
		}
	}()

	if err := sink.Start(ctx, runID, time.Now()); err != nil {
		log.Error("writing run marker", zap.Error(err))
		return err
	}

	pacer := pacing.New(cfg.Pauses, log)
	tabs := extract.NewTabs(cfg.Board.TabLink, cfg.Board.ActiveMarker, cfg.Waits.Action, pacer, log)

	scanner, err := scan.New(scan.Deps{
		Config:    cfg,
		Extractor: extract.New(tabs, cfg.Waits.Strategy, log),
		Chart:     chart.New(cfg.Chart, tabs, ocr.NewTesseract(cfg.OCR.Languages...), cfg.Waits.Strategy, log),
		Scorer:    scorer,
		Profile:   profile,
		Filters:   filters,
		Sink:      sink,
		Pacer:     pacer,
		Logger:    log,
	})
	if err != nil {
		log.Error("creating scanner", zap.Error(err))
		return err
	}

	var op scan.Operator = console
	if auto, _ := cmd.Flags().GetBool("auto-continue"); auto {
		op = operator.SinglePage{}
	}

	summary, err := scanner.Run(ctx, p, op)
	log.Info("scan finished",
		zap.Int("pages", summary.Pages),
		zap.Int("processed", summary.Processed),
		zap.Int("accepted", summary.Accepted),
		zap.Int("rejected", summary.Rejected),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed),
	)
	if errors.Is(err, context.Canceled) {
		log.Info("exiting", zap.String("reason", "interrupted"))
		return nil
	}

	return err
}

// prepareScoring parses the resume when scoring is enabled. Any failure
// disables scoring instead of stopping the run.
func prepareScoring(ctx context.Context, cfg *config.Config, log *zap.Logger) (scan.MatchScorer, *resume.Profile) {
	path := ""
	if cfg.Resume != nil {
		path = cfg.Resume.Path
	}

	if cfg.AI == nil || !cfg.AI.Enabled || path == "" {
		log.Info("match scoring disabled", zap.String("hint", "set ai.enabled and resume.path, or pass --resume"))
		return nil, nil
	}

	generator, err := newGenerator(ctx, cfg.AI, log)
	if err != nil {
		log.Warn("match scoring disabled", zap.Error(err))
		return nil, nil
	}

	profile, err := parseResumeFile(ctx, path, generator, cfg.AI.MaxLogLength, log)
	if err != nil {
		log.Warn("match scoring disabled", zap.Error(err))
		return nil, nil
	}

	log.Info("match scoring enabled",
		zap.String("resume", path),
		zap.Int("skills", len(profile.Skills)),
	)

	return matching.NewScorer(generator, logger.WithAI(log, "", generator.Model()), cfg.AI.MaxLogLength), profile
}

func durationPreference(ctx context.Context, cmd *cobra.Command, console *operator.Console) (filtering.Preference, error) {
	if cmd.Flags().Changed("duration") {
		value, _ := cmd.Flags().GetString("duration")
		return filtering.ParsePreference(value), nil
	}
	return console.DurationPreference(ctx)
}

func openSinks(cfg *config.Config, log *zap.Logger) (results.Sink, error) {
	primary, err := results.OpenLog(cfg.Results.Log)
	if err != nil {
		return nil, err
	}

	var mirrors []results.Sink

	if cfg.Results.Workbook != "" {
		wb, err := results.OpenWorkbook(cfg.Results.Workbook)
		if err != nil {
			log.Warn("skipping workbook mirror", zap.Error(err))
		} else {
			mirrors = append(mirrors, wb)
		}
	}

	if cfg.Telegram != nil && cfg.Telegram.Enabled {
		tg, err := newTelegram(cfg.Telegram, log)
		if err != nil {
			log.Warn("skipping telegram notifications", zap.Error(err))
		} else {
			mirrors = append(mirrors, tg)
		}
	}

	return results.NewMulti(log, primary, mirrors...), nil
}

func newTelegram(cfg *config.Telegram, log *zap.Logger) (*notify.Telegram, error) {
	token, err := secrets.Load(secrets.Source{
		Name: "telegram bot token",
		File: cfg.TokenFile,
		Env:  "TELEGRAM_BOT_TOKEN",
	})
	if err != nil {
		return nil, err
	}
	return notify.NewTelegram(token, cfg.ChatID, log)
}
