package model

import (
	"time"
)

// ChatLogEntry is one recorded conversation turn. The log store keeps only
// the most recent entries, so these are operational breadcrumbs rather than
// a durable transcript.
type ChatLogEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	SessionID   string    `json:"session_id"`
	AccessCode  string    `json:"access_code"`
	UserMessage string    `json:"user_message"`
	BotResponse string    `json:"bot_response"`
	Brand       string    `json:"brand"`
	IPAddress   string    `json:"ip_address"`
	UserAgent   string    `json:"user_agent,omitempty"`
}
