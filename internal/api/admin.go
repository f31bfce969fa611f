package api

import (
	"errors"
	"net/http"

	"chatbot-backend/internal/database"
	"chatbot-backend/internal/store"
	"chatbot-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

const defaultMessagePageSize = 50

// AdminService backs the settings dashboard: user listing, history paging,
// and per-user settings reads/writes.
type AdminService struct {
	store *store.Store
}

func NewAdminService(store *store.Store) *AdminService {
	return &AdminService{store: store}
}

func (s *AdminService) AddRoutes(r chi.Router) {
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
	r.Route("/admin/users", func(r chi.Router) {
		r.Get("/", RestHandler(s.ListUsers))
		r.Get("/{chat_id}/messages", RestHandler(s.GetMessages))
		r.Get("/{chat_id}/settings", RestHandler(s.GetSettings))
		r.Put("/{chat_id}/settings", RestHandler(s.UpdateSettings))
	})
}

// requireUser maps an unknown chat id to 404. Settings are one-to-one with
// users, so the dashboard cannot create rows for chats the bot has never seen.
func (s *AdminService) requireUser(r *http.Request, chatID int64) error {
	if _, err := s.store.GetUser(r.Context(), chatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CodedErrorf(http.StatusNotFound, "unknown chat id %d", chatID)
		}
		return CodedError(http.StatusInternalServerError, err)
	}
	return nil
}

func (s *AdminService) ListUsers(r *http.Request) (any, error) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return users, nil
}

func (s *AdminService) GetMessages(r *http.Request) (any, error) {
	chatID, err := URLParamChatID(r, "chat_id")
	if err != nil {
		return nil, err
	}

	params, err := ParseRequestQueryParams[api.MessagePageParams](r)
	if err != nil {
		return nil, err
	}
	if params.Limit <= 0 {
		params.Limit = defaultMessagePageSize
	}
	if params.Offset < 0 {
		return nil, CodedErrorf(http.StatusBadRequest, "offset must not be negative")
	}

	messages, err := s.store.Messages(r.Context(), chatID, params.Limit, params.Offset)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return messages, nil
}

func (s *AdminService) GetSettings(r *http.Request) (any, error) {
	chatID, err := URLParamChatID(r, "chat_id")
	if err != nil {
		return nil, err
	}

	if err := s.requireUser(r, chatID); err != nil {
		return nil, err
	}

	settings, err := s.store.GetOrCreateSettings(r.Context(), chatID)
	if err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}
	return settings, nil
}

func (s *AdminService) UpdateSettings(r *http.Request) (any, error) {
	chatID, err := URLParamChatID(r, "chat_id")
	if err != nil {
		return nil, err
	}

	if err := s.requireUser(r, chatID); err != nil {
		return nil, err
	}

	req, err := ParseRequest[api.UpdateSettingsRequest](r)
	if err != nil {
		return nil, err
	}

	if req.MaxContextMessages <= 0 {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "max_context_messages must be positive")
	}
	if req.BotName == "" || req.GreetingMessage == "" {
		return nil, CodedErrorf(http.StatusUnprocessableEntity, "bot_name and greeting_message must not be empty")
	}

	settings := database.BotSettings{
		TelegramID:         chatID,
		GreetingMessage:    req.GreetingMessage,
		BotName:            req.BotName,
		ContextEnabled:     req.ContextEnabled,
		MaxContextMessages: req.MaxContextMessages,
	}
	if err := s.store.UpdateSettings(r.Context(), settings); err != nil {
		return nil, CodedError(http.StatusInternalServerError, err)
	}

	return settings, nil
}
