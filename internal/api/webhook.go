package api

import (
	"log/slog"
	"net/http"

	"chatbot-backend/internal/chat"
	"chatbot-backend/internal/store"
	"chatbot-backend/internal/telegram"
	"chatbot-backend/pkg/api"

	"github.com/go-chi/chi/v5"
)

const startCommand = "/start"

// WebhookService handles inbound Telegram updates. Every handled update is
// acknowledged with {"ok": true}; receipt and processing are separate
// contracts, so short-circuit paths still ack.
type WebhookService struct {
	store      *store.Store
	responder  *chat.Responder
	dispatcher telegram.Sender
}

func NewWebhookService(store *store.Store, responder *chat.Responder, dispatcher telegram.Sender) *WebhookService {
	return &WebhookService{
		store:      store,
		responder:  responder,
		dispatcher: dispatcher,
	}
}

func (s *WebhookService) AddRoutes(r chi.Router) {
	r.Post("/webhook", RestHandler(s.HandleUpdate))
}

func (s *WebhookService) HandleUpdate(r *http.Request) (any, error) {
	update, err := ParseRequest[api.Update](r)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()

	// Updates without a message (edits, callbacks, etc.) and messages without
	// text (stickers, photos) are acked with no side effects.
	if update.Message == nil {
		return api.Ack{OK: true}, nil
	}
	chatID := update.Message.Chat.ID
	text := update.Message.Text
	if text == "" {
		return api.Ack{OK: true}, nil
	}

	var username, firstName, lastName string
	if update.Message.From != nil {
		username = update.Message.From.Username
		firstName = update.Message.From.FirstName
		lastName = update.Message.From.LastName
	}

	if err := s.store.UpsertUser(ctx, chatID, username, firstName, lastName); err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	settings, err := s.store.GetOrCreateSettings(ctx, chatID)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	if text == startCommand {
		s.dispatcher.SendText(ctx, chatID, settings.GreetingMessage)
		return api.Ack{OK: true}, nil
	}

	reply, err := s.responder.Respond(ctx, chatID, text, settings)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	s.dispatcher.SendText(ctx, chatID, reply)

	slog.Info("handled update", "chat_id", chatID)
	return api.Ack{OK: true}, nil
}
