package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spigell/junior-hunter/internal/matching"
	"github.com/spigell/junior-hunter/internal/results"
	"github.com/spigell/junior-hunter/internal/signal"
	"go.uber.org/zap"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestTelegramNotify(t *testing.T) {
	t.Parallel()

	bot := &fakeBot{}
	tg := &Telegram{bot: bot, chatID: 42, logger: zap.NewNop()}

	err := tg.Append(context.Background(), results.Posting{
		Title:     "R&D <Intern>",
		Seniority: signal.Seniority{First: 35, Second: 10},
		Duration:  signal.FourMonth,
		Match:     &matching.Result{MatchScore: 70, Reasoning: "Go > Java"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(bot.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.ChatID != 42 || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("unexpected message config: chat %d, mode %q", msg.ChatID, msg.ParseMode)
	}
	for _, want := range []string{"R&amp;D &lt;Intern&gt;", "Junior score: 45.0%", "Duration: 4 Month", "Match: 70%", "Go &gt; Java"} {
		if !strings.Contains(msg.Text, want) {
			t.Fatalf("message %q lacks %q", msg.Text, want)
		}
	}
}

func TestTelegramErrors(t *testing.T) {
	t.Parallel()

	tg := &Telegram{bot: &fakeBot{err: errors.New("forbidden")}, chatID: 1, logger: zap.NewNop()}

	if err := tg.Notify(context.Background(), results.Posting{Title: "x"}); err == nil {
		t.Fatalf("expected error")
	}
	if err := tg.Start(context.Background(), "run", time.Now()); err == nil {
		t.Fatalf("expected error")
	}

	if _, err := NewTelegram("", 1, nil); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestMessageWithoutMatch(t *testing.T) {
	t.Parallel()

	text := Message(results.Posting{Title: "Intern", Duration: signal.Unknown})
	if strings.Contains(text, "Match") {
		t.Fatalf("unexpected match section in %q", text)
	}
}
