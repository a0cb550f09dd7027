package model

import "time"

// SessionSummary is the sidebar projection of a conversation session,
// as returned by GET /sessions. Server order (updated_at desc) is preserved.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        *string   `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// SessionHistory is the full conversation for one session,
// as returned by GET /sessions/{id}.
type SessionHistory struct {
	SessionID string    `json:"session_id"`
	Title     *string   `json:"title"`
	Messages  []Message `json:"messages"`
}

// DisplayTitle returns the session title with an untitled fallback.
func (s SessionSummary) DisplayTitle() string {
	if s.Title != nil && *s.Title != "" {
		return *s.Title
	}
	return "Untitled session"
}
