package model

import (
	"time"
)

// CodeKind distinguishes the two issuable access code variants. Unknown only
// appears when a live session's code has since been deleted.
type CodeKind string

const (
	CodeKindOneTime   CodeKind = "one_time"
	CodeKindPermanent CodeKind = "permanent"
	CodeKindUnknown   CodeKind = "unknown"
)

// Valid reports whether k is an issuable kind.
func (k CodeKind) Valid() bool {
	return k == CodeKindOneTime || k == CodeKindPermanent
}

// UsageAction labels one entry in a code's usage history.
type UsageAction string

const (
	UsageActionUsed  UsageAction = "used"
	UsageActionReset UsageAction = "reset"
)

// UsageRecord is one event in a code's lifecycle. Actor is only set for
// admin-initiated actions like resets.
type UsageRecord struct {
	Timestamp time.Time   `json:"timestamp"`
	Action    UsageAction `json:"action"`
	Actor     string      `json:"actor,omitempty"`
}

// AccessCode is the persisted record of one issued code. Field names match
// the JSON document on disk, which predates this server.
type AccessCode struct {
	Code         string        `json:"code"`
	Kind         CodeKind      `json:"type"`
	Description  string        `json:"description,omitempty"`
	IsUsed       bool          `json:"is_used"`
	CreatedAt    time.Time     `json:"created_at"`
	UsedAt       *time.Time    `json:"used_at,omitempty"`
	ResetCount   int           `json:"reset_count,omitempty"`
	UsageHistory []UsageRecord `json:"usage_history"`
}

// IsPermanent reports whether the code survives logins.
func (c *AccessCode) IsPermanent() bool {
	return c.Kind == CodeKindPermanent
}

// Spent reports whether the code can no longer authorize a login. Permanent
// codes are never spent.
func (c *AccessCode) Spent() bool {
	return c.Kind == CodeKindOneTime && c.IsUsed
}

// CodeInfo is the validation-time snapshot of a code, without its history.
type CodeInfo struct {
	Code      string    `json:"code"`
	Kind      CodeKind  `json:"type"`
	IsUsed    bool      `json:"is_used"`
	CreatedAt time.Time `json:"created_at"`
}
