package browser

import (
	"testing"
	"time"

	"github.com/spigell/junior-hunter/internal/config"
)

func TestLaunchOptions(t *testing.T) {
	t.Parallel()

	opts := LaunchOptions(&config.Browser{Headless: true, SlowMo: 250 * time.Millisecond})
	if opts.Headless == nil || !*opts.Headless {
		t.Fatalf("expected headless launch")
	}
	if opts.SlowMo == nil || *opts.SlowMo != 250 {
		t.Fatalf("expected slow-mo 250ms, got %v", opts.SlowMo)
	}

	opts = LaunchOptions(&config.Browser{})
	if opts.Headless == nil || *opts.Headless {
		t.Fatalf("expected headed launch")
	}
	if opts.SlowMo != nil {
		t.Fatalf("expected no slow-mo, got %v", *opts.SlowMo)
	}
}

func TestContextOptions(t *testing.T) {
	t.Parallel()

	opts := ContextOptions(&config.Browser{UserAgent: "agent", Width: 1280, Height: 720})
	if opts.UserAgent == nil || *opts.UserAgent != "agent" {
		t.Fatalf("unexpected user agent %v", opts.UserAgent)
	}
	if opts.Viewport == nil || opts.Viewport.Width != 1280 || opts.Viewport.Height != 720 {
		t.Fatalf("unexpected viewport %+v", opts.Viewport)
	}

	opts = ContextOptions(&config.Browser{Width: 1280})
	if opts.UserAgent != nil || opts.Viewport != nil {
		t.Fatalf("expected defaults, got %+v", opts)
	}
}

func TestCloseOnEmptySession(t *testing.T) {
	t.Parallel()

	(&Session{}).Close()
}
