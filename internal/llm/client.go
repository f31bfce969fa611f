package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Message is one turn of model input.
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Completer is the seam the webhook flow talks to, so tests can stub the
// completion API.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Client calls the OpenAI chat completion endpoint with a fixed model and
// temperature and returns the first choice's content.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
}

const completionTimeout = 50 * time.Second

func NewClient(apiKey, model string) *Client {
	return &Client{
		client:      openai.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		temperature: 0.7,
	}
}

func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			params = append(params, openai.SystemMessage(msg.Content))
		case "assistant":
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}

	res, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    params,
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		slog.Error("openai error: chat completions failed", "error", err)
		return "", fmt.Errorf("completion request failed: %w", err)
	}

	if len(res.Choices) == 0 {
		return "", fmt.Errorf("completion response contained no choices")
	}

	return res.Choices[0].Message.Content, nil
}
