package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	tele "gopkg.in/telebot.v3"

	"github.com/eliseohh/homeworkbot/internal/logging"
)

// ErrDelivery matches every failed send.
var ErrDelivery = errors.New("telegram delivery failed")

// DeliveryError wraps the telebot error for one failed send.
type DeliveryError struct {
	Chat string
	Err  error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s (chat %s): %v", ErrDelivery, e.Chat, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func (e *DeliveryError) Is(target error) bool {
	return target == ErrDelivery
}

type Config struct {
	Token string
	// ChatID is a numeric chat id or a public channel username ("@name").
	ChatID string
	// APIURL overrides the Bot API base URL; empty means api.telegram.org.
	APIURL     string
	HTTPClient *http.Client
}

// Notifier sends plain-text messages to one fixed chat. It never listens
// for updates.
type Notifier struct {
	api    *tele.Bot
	chat   chatRecipient
	logger *slog.Logger
}

type chatRecipient string

func (c chatRecipient) Recipient() string {
	return string(c)
}

func New(cfg Config, logger *slog.Logger) (*Notifier, error) {
	chat := strings.TrimSpace(cfg.ChatID)
	if chat == "" {
		return nil, errors.New("bot: empty chat id")
	}

	pref := tele.Settings{
		Token:   cfg.Token,
		URL:     cfg.APIURL,
		Client:  cfg.HTTPClient,
		Offline: true,
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("bot: %w", err)
	}

	return &Notifier{api: b, chat: chatRecipient(chat), logger: logger}, nil
}

// Notify delivers text to the configured chat. Failures come back as
// *DeliveryError; the caller decides whether to log or escalate.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return &DeliveryError{Chat: string(n.chat), Err: err}
	}

	logging.Debug(n.logger, "sending message", slog.String(logging.FieldChat, string(n.chat)))
	if _, err := n.api.Send(n.chat, text, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
		return &DeliveryError{Chat: string(n.chat), Err: err}
	}
	logging.Debug(n.logger, "message sent", slog.String(logging.FieldChat, string(n.chat)))
	return nil
}

// Chat returns the recipient the notifier writes to.
func (n *Notifier) Chat() string {
	return string(n.chat)
}
