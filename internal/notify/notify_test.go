package notify

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dmarkhas/renderdeploy-go/internal/logger"
)

type fakeBot struct {
	sent   []tgbotapi.Chattable
	errFor map[int64]error
	nextID int
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sent = append(b.sent, c)
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		if err, bad := b.errFor[msg.ChatID]; bad {
			return tgbotapi.Message{}, err
		}
	}
	b.nextID++
	return tgbotapi.Message{MessageID: b.nextID}, nil
}

func testLogger() *logger.Logger {
	return logger.NewWithWriter("error", io.Discard)
}

func sentMessages(t *testing.T, bot *fakeBot) []tgbotapi.MessageConfig {
	t.Helper()
	msgs := make([]tgbotapi.MessageConfig, 0, len(bot.sent))
	for _, c := range bot.sent {
		msg, ok := c.(tgbotapi.MessageConfig)
		if !ok {
			t.Fatalf("sent unexpected chattable %T", c)
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

func TestDeployFinished_SendsToEveryAdmin(t *testing.T) {
	t.Parallel()
	bot := &fakeBot{}
	n := New(bot, []int64{10, 20, 30}, testLogger())

	n.DeployFinished(context.Background(), Result{
		Action:     "update",
		ServiceID:  "srv-123",
		ServiceURL: "https://bot.onrender.com",
		Duration:   90 * time.Second,
	})

	msgs := sentMessages(t, bot)
	if len(msgs) != 3 {
		t.Fatalf("sent %d messages, want 3", len(msgs))
	}
	for i, want := range []int64{10, 20, 30} {
		if msgs[i].ChatID != want {
			t.Errorf("message %d went to chat %d, want %d", i, msgs[i].ChatID, want)
		}
	}
	if !strings.Contains(msgs[0].Text, "Deploy succeeded") {
		t.Errorf("unexpected message text: %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[0].Text, "https://bot.onrender.com") {
		t.Errorf("message missing service URL: %q", msgs[0].Text)
	}
}

func TestDeployFinished_FailureMessage(t *testing.T) {
	t.Parallel()
	bot := &fakeBot{}
	n := New(bot, []int64{10}, testLogger())

	n.DeployFinished(context.Background(), Result{
		Action:   "update",
		Duration: time.Minute,
		Err:      stderrors.New("deploy did not become live"),
	})

	msgs := sentMessages(t, bot)
	if len(msgs) != 1 {
		t.Fatalf("sent %d messages, want 1", len(msgs))
	}
	if !strings.Contains(msgs[0].Text, "Deploy failed") {
		t.Errorf("unexpected message text: %q", msgs[0].Text)
	}
	if !strings.Contains(msgs[0].Text, "deploy did not become live") {
		t.Errorf("message missing error detail: %q", msgs[0].Text)
	}
}

func TestDeployFinished_BlockedChatDoesNotStopOthers(t *testing.T) {
	t.Parallel()
	bot := &fakeBot{errFor: map[int64]error{10: stderrors.New("bot was blocked by the user")}}
	n := New(bot, []int64{10, 20}, testLogger())

	n.DeployFinished(context.Background(), Result{Action: "create", Duration: time.Second})

	if len(bot.sent) != 2 {
		t.Fatalf("sent %d messages, want 2 attempts", len(bot.sent))
	}
}

func TestDeployFinished_NoAdminsIsNoop(t *testing.T) {
	t.Parallel()
	bot := &fakeBot{}
	n := New(bot, nil, testLogger())

	n.DeployFinished(context.Background(), Result{Action: "update"})

	if len(bot.sent) != 0 {
		t.Errorf("no-op notifier sent %d messages", len(bot.sent))
	}
}

func TestDeployFinished_CanceledContextStopsSending(t *testing.T) {
	t.Parallel()
	bot := &fakeBot{}
	n := New(bot, []int64{10, 20}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.DeployFinished(ctx, Result{Action: "update"})

	if len(bot.sent) != 0 {
		t.Errorf("canceled context still sent %d messages", len(bot.sent))
	}
}
