package model

import "time"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn. User turns fetched from the server may
// carry the extra fields the tutor backend attaches (submitted problem and
// code, detected syntax errors, frustration score); the client never reads
// into their meaning.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`

	Problem          *string  `json:"problem,omitempty"`
	Code             *string  `json:"code,omitempty"`
	SyntaxErrors     *string  `json:"syntax_errors,omitempty"`
	FrustrationScore *float64 `json:"frustration_score,omitempty"`

	// Err marks locally appended failure notices. Never set on messages
	// that came from the server.
	Err bool `json:"-"`
}
