package controller

import (
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/RivanJarjes/score-mvp-prototype/model"
)

// Handle correlates an optimistically inserted message with the server
// response that later confirms it. Matching is by the temporary id, never by
// position or content, so duplicate submissions stay unambiguous.
type Handle struct {
	id string
}

// Timeline holds the ordered conversation for the current session. Within a
// page lifetime it is append-only: entries are never reordered or removed
// except by a full Reset when the session switches.
type Timeline struct {
	title    string
	messages []model.Message
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Reset replaces the whole conversation; used when switching sessions.
func (t *Timeline) Reset(title string, messages []model.Message) {
	t.title = title
	t.messages = append([]model.Message(nil), messages...)
}

func (t *Timeline) Title() string { return t.title }

func (t *Timeline) SetTitle(title string) { t.title = title }

// Messages returns the live sequence. Callers read it; only the controllers
// write.
func (t *Timeline) Messages() []model.Message { return t.messages }

func (t *Timeline) Len() int { return len(t.messages) }

// AppendOptimistic inserts the user's turn before any network round trip,
// under a temporary id, and returns the handle used to reconcile it once the
// server responds.
func (t *Timeline) AppendOptimistic(problem string, code *string) Handle {
	id := "tmp-" + gonanoid.Must(12)
	content := problem
	if code != nil {
		// Same combined shape the server stores for user turns.
		content = "Code:\n" + *code + "\n\nProblem:\n" + problem
	}
	t.messages = append(t.messages, model.Message{
		ID:        id,
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
		Problem:   &problem,
		Code:      code,
	})
	return Handle{id: id}
}

// Reconcile swaps the temporary id of the entry behind h for its final one
// and reports whether the entry was found. Position and content are
// untouched. A handle whose entry is gone (the timeline was reset underneath
// it) leaves the timeline unchanged and reports false.
func (t *Timeline) Reconcile(h Handle, finalID string) bool {
	if h.id == "" || finalID == "" {
		return false
	}
	for i := range t.messages {
		if t.messages[i].ID == h.id {
			t.messages[i].ID = finalID
			return true
		}
	}
	return false
}

// Has reports whether the entry behind h is still present.
func (t *Timeline) Has(h Handle) bool {
	for i := range t.messages {
		if t.messages[i].ID == h.id {
			return true
		}
	}
	return false
}

// AppendAssistant appends the assistant's reply under a fresh local id.
func (t *Timeline) AppendAssistant(content string) {
	t.messages = append(t.messages, model.Message{
		ID:        gonanoid.Must(12),
		Role:      model.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	})
}

// AppendError appends a failure notice in the assistant's slot. The flag is
// client-side only; these entries never round-trip to the server.
func (t *Timeline) AppendError(content string) {
	t.messages = append(t.messages, model.Message{
		ID:        gonanoid.Must(12),
		Role:      model.RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
		Err:       true,
	})
}
