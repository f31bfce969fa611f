package api

// Update is the Telegram webhook envelope. Only the fields this service
// reads are modeled.
type Update struct {
	UpdateID int64            `json:"update_id"`
	Message  *IncomingMessage `json:"message,omitempty"`
}

type IncomingMessage struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	From      *Actor `json:"from,omitempty"`
	Text      string `json:"text,omitempty"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type Actor struct {
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Ack is the webhook response body. Telegram only needs to know the update
// was received, so every handled path answers {"ok": true}.
type Ack struct {
	OK bool `json:"ok"`
}

type UpdateSettingsRequest struct {
	GreetingMessage    string `json:"greeting_message"`
	BotName            string `json:"bot_name"`
	ContextEnabled     bool   `json:"context_enabled"`
	MaxContextMessages int    `json:"max_context_messages"`
}

type MessagePageParams struct {
	Limit  int `schema:"limit"`
	Offset int `schema:"offset"`
}
