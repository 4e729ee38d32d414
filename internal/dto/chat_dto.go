package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendMessageRequest struct {
	Text string `json:"text"`
}

type ChatMessageResponse struct {
	Id     uuid.UUID `json:"id"`
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	Status string    `json:"status"`
	At     time.Time `json:"at"`
}

type SendMessageResponse struct {
	Mode  string `json:"mode,omitempty"` // "CHAT" | "SEARCH"; empty when the input was dropped
	Reply string `json:"reply,omitempty"`
}

type ChatHistoryResponse struct {
	SessionId    string                `json:"session_id"`
	IsSearchMode bool                  `json:"is_search_mode"`
	Messages     []ChatMessageResponse `json:"messages"`
}

type SetSearchModeRequest struct {
	Enabled bool `json:"enabled"`
}
