// Package notify pushes deploy outcome messages to the bot's admins
// over Telegram. Failures to notify are logged but never fail a deploy;
// the notification channel is best effort.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmarkhas/renderdeploy-go/internal/logger"
)

// BotAPI abstracts the Telegram bot methods used by the notifier.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends deploy outcome messages to a fixed set of admin chats.
type Notifier struct {
	bot      BotAPI
	adminIDs []int64
	log      *logger.Logger
}

// New creates a Notifier from an existing bot client. With no admin IDs
// the notifier is a no-op.
func New(bot BotAPI, adminIDs []int64, log *logger.Logger) *Notifier {
	return &Notifier{
		bot:      bot,
		adminIDs: adminIDs,
		log:      log.WithModule("notify"),
	}
}

// NewFromToken connects to the Telegram Bot API with token and returns
// a Notifier for adminIDs.
func NewFromToken(token string, adminIDs []int64, log *logger.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	return New(bot, adminIDs, log), nil
}

// Result summarizes one deploy run for the notification message.
type Result struct {
	Action     string
	ServiceID  string
	ServiceURL string
	Duration   time.Duration
	Err        error
}

// DeployFinished sends the outcome to every admin chat. Per-chat send
// failures are logged and skipped so one blocked chat cannot silence
// the rest.
func (n *Notifier) DeployFinished(ctx context.Context, res Result) {
	if n == nil || n.bot == nil || len(n.adminIDs) == 0 {
		return
	}

	text := formatResult(res)
	for _, chatID := range n.adminIDs {
		if ctx.Err() != nil {
			return
		}
		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if _, err := n.bot.Send(msg); err != nil {
			n.log.WithError(err).WithField("chat_id", chatID).Warn("failed to send deploy notification")
		}
	}
}

func formatResult(res Result) string {
	var b strings.Builder
	if res.Err != nil {
		b.WriteString("❌ <b>Deploy failed</b>\n")
	} else {
		b.WriteString("✅ <b>Deploy succeeded</b>\n")
	}

	fmt.Fprintf(&b, "Action: %s\n", res.Action)
	if res.ServiceID != "" {
		fmt.Fprintf(&b, "Service: <code>%s</code>\n", res.ServiceID)
	}
	if res.ServiceURL != "" {
		fmt.Fprintf(&b, "URL: %s\n", res.ServiceURL)
	}
	fmt.Fprintf(&b, "Duration: %s", res.Duration.Round(time.Second))
	if res.Err != nil {
		fmt.Fprintf(&b, "\nError: <code>%s</code>", res.Err)
	}
	return b.String()
}
