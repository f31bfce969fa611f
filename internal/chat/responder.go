package chat

import (
	"context"
	"fmt"

	"chatbot-backend/internal/database"
	"chatbot-backend/internal/llm"
	"chatbot-backend/internal/store"
)

const systemPromptTemplate = "Ты - %s. Отвечай дружелюбно и полезно на русском языке."

// Responder runs one conversation turn: it persists the user's message,
// assembles the model context from settings, requests a completion, and
// persists the reply.
type Responder struct {
	store     *store.Store
	completer llm.Completer
}

func NewResponder(store *store.Store, completer llm.Completer) *Responder {
	return &Responder{store: store, completer: completer}
}

// Respond handles a non-command user message and returns the assistant reply.
// The user turn is saved before the context window is fetched, so when context
// is enabled the current message is part of the window and counts against the
// cap.
func (r *Responder) Respond(ctx context.Context, telegramID int64, text string, settings database.BotSettings) (string, error) {
	if err := r.store.AppendMessage(ctx, telegramID, database.RoleUser, text); err != nil {
		return "", err
	}

	window, err := r.assembleContext(ctx, telegramID, text, settings)
	if err != nil {
		return "", err
	}

	reply, err := r.completer.Complete(ctx, window)
	if err != nil {
		return "", fmt.Errorf("error completing chat for user %d: %w", telegramID, err)
	}

	if err := r.store.AppendMessage(ctx, telegramID, database.RoleAssistant, reply); err != nil {
		return "", err
	}

	return reply, nil
}

// assembleContext builds the ordered model input, system prompt first. With
// context disabled the window is exactly the current text; otherwise it is the
// stored history capped at MaxContextMessages, oldest first.
func (r *Responder) assembleContext(ctx context.Context, telegramID int64, text string, settings database.BotSettings) ([]llm.Message, error) {
	window := []llm.Message{{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, settings.BotName),
	}}

	if !settings.ContextEnabled {
		return append(window, llm.Message{Role: database.RoleUser, Content: text}), nil
	}

	history, err := r.store.RecentMessages(ctx, telegramID, settings.MaxContextMessages)
	if err != nil {
		return nil, err
	}
	for _, msg := range history {
		window = append(window, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return window, nil
}
