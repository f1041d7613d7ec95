// Package notify pushes accepted postings to a Telegram chat.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spigell/junior-hunter/internal/results"
	"go.uber.org/zap"
)

var _ results.Sink = (*Telegram)(nil)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends one message per accepted posting. It satisfies
// results.Sink so it can run as a result mirror.
type Telegram struct {
	bot    sender
	chatID int64
	logger *zap.Logger
}

func NewTelegram(token string, chatID int64, logger *zap.Logger) (*Telegram, error) {
	if token == "" {
		return nil, errors.New("telegram token is required")
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

func (t *Telegram) send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	_, err := t.bot.Send(msg)
	return err
}

// Notify sends p to the chat.
func (t *Telegram) Notify(_ context.Context, p results.Posting) error {
	if err := t.send(Message(p)); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	t.logger.Debug("telegram notification sent", zap.String("title", p.Title))
	return nil
}

func (t *Telegram) Start(_ context.Context, runID string, at time.Time) error {
	return t.send(fmt.Sprintf("🔎 Junior hunter run <code>%s</code> started at %s",
		html.EscapeString(runID), at.Format(time.RFC3339)))
}

func (t *Telegram) Append(ctx context.Context, p results.Posting) error {
	return t.Notify(ctx, p)
}

func (t *Telegram) Close() error { return nil }

// Message renders p as an HTML chat message.
func Message(p results.Posting) string {
	text := fmt.Sprintf(
		"🎯 <b>%s</b>\n"+
			"Junior score: %.1f%% (first %.1f%%, second %.1f%%)\n"+
			"Duration: %s",
		html.EscapeString(results.OneLineTitle(p.Title)),
		p.Seniority.Total(),
		p.Seniority.First,
		p.Seniority.Second,
		p.Duration,
	)
	if p.Match != nil {
		text += fmt.Sprintf("\nMatch: %d%%\n<i>%s</i>", p.Match.MatchScore, html.EscapeString(p.Match.Reasoning))
	}
	return text
}
