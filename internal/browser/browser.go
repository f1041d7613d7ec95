// Package browser owns the playwright process, the Chromium instance and the
// single page the operator logs into.
package browser

import (
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
	"github.com/spigell/junior-hunter/internal/config"
	"github.com/spigell/junior-hunter/internal/page"
	"go.uber.org/zap"
)

// Session is one headed or headless browser with one page.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *page.Playwright
	logger  *zap.Logger
}

// Launch starts playwright and opens a page configured from cfg.
func Launch(cfg *config.Browser, logger *zap.Logger) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("browser config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	s := &Session{pw: pw, logger: logger}

	s.browser, err = pw.Chromium.Launch(LaunchOptions(cfg))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}

	s.context, err = s.browser.NewContext(ContextOptions(cfg))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	p, err := s.context.NewPage()
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	s.page = page.NewPlaywright(p)

	logger.Info("browser launched",
		zap.Bool("headless", cfg.Headless),
		zap.Duration("slow_mo", cfg.SlowMo),
	)

	return s, nil
}

// LaunchOptions maps the browser config to chromium launch options.
func LaunchOptions(cfg *config.Browser) playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	}
	if cfg.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(cfg.SlowMo.Milliseconds()))
	}
	return opts
}

// ContextOptions maps the browser config to context options.
func ContextOptions(cfg *config.Browser) playwright.BrowserNewContextOptions {
	var opts playwright.BrowserNewContextOptions
	if cfg.UserAgent != "" {
		opts.UserAgent = playwright.String(cfg.UserAgent)
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		opts.Viewport = &playwright.Size{Width: cfg.Width, Height: cfg.Height}
	}
	return opts
}

// Page returns the session page.
func (s *Session) Page() page.Page {
	return s.page
}

// Close shuts down everything Launch started. It is safe to call on a
// partially launched session.
func (s *Session) Close() {
	if s.context != nil {
		if err := s.context.Close(); err != nil {
			s.logger.Warn("failed to close browser context", zap.Error(err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			s.logger.Warn("failed to close browser", zap.Error(err))
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil {
			s.logger.Warn("failed to stop playwright", zap.Error(err))
		}
	}
}
