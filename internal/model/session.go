package model

import (
	"time"
)

// Session binds a client to a validated access code for the lifetime of the
// process. Sessions are never persisted; a restart invalidates all of them.
type Session struct {
	SessionID    string    `json:"session_id"`
	AccessCode   string    `json:"access_code"`
	IPAddress    string    `json:"ip_address"`
	UserAgent    string    `json:"user_agent,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	LastActivity time.Time `json:"last_activity"`
	IsActive     bool      `json:"is_active"`
}

// SessionInfo is the snapshot returned by session validation. CodeKind
// reflects the bound code's current kind and degrades to CodeKindUnknown if
// the code has since been deleted.
type SessionInfo struct {
	SessionID  string   `json:"session_id"`
	AccessCode string   `json:"access_code"`
	IPAddress  string   `json:"ip_address"`
	CodeKind   CodeKind `json:"code_type"`
}
