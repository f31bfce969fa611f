package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
)

// Sender is the outbound chat-platform seam the webhook flow talks to.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string)
}

// Dispatcher posts messages to the Telegram Bot API. Sends are best effort:
// failures are logged and never surfaced to the webhook flow, so a dropped
// delivery cannot fail an otherwise processed update.
type Dispatcher struct {
	client *resty.Client
	token  string
}

func NewDispatcher(token string) *Dispatcher {
	return &Dispatcher{
		client: resty.New().SetBaseURL("https://api.telegram.org"),
		token:  token,
	}
}

// NewDispatcherWithBaseURL exists for tests that point the dispatcher at a
// local server.
func NewDispatcherWithBaseURL(token, baseURL string) *Dispatcher {
	return &Dispatcher{
		client: resty.New().SetBaseURL(baseURL),
		token:  token,
	}
}

type sendMessageRequest struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

func (d *Dispatcher) SendText(ctx context.Context, chatID int64, text string) {
	res, err := d.client.R().
		SetContext(ctx).
		SetBody(sendMessageRequest{ChatID: chatID, Text: text}).
		Post(fmt.Sprintf("/bot%s/sendMessage", d.token))
	if err != nil {
		slog.Error("error sending telegram message", "chat_id", chatID, "error", err)
		return
	}
	if res.IsError() {
		slog.Error("telegram send rejected", "chat_id", chatID, "status", res.StatusCode(), "body", res.String())
	}
}
