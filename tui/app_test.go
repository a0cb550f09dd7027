package tui

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/controller"
)

func loggedInModel() Model {
	m := NewModel(api.NewClient("http://127.0.0.1:1"), "")
	m.auth.ApplyStatus(controller.StatusCheckedMsg{Email: "student@school.edu"})
	m.mode = modeChat
	return m
}

func TestSessionListUnauthorizedReturnsToSignIn(t *testing.T) {
	m := loggedInModel()

	next, _ := m.Update(sessionsLoadedMsg{err: &api.APIError{Status: http.StatusUnauthorized}})

	got := next.(Model)
	assert.Equal(t, modeAuth, got.mode)
	assert.Equal(t, controller.AuthLoggedOut, got.auth.Phase())
}

func TestSessionListOtherFailureStaysInChat(t *testing.T) {
	m := loggedInModel()

	next, _ := m.Update(sessionsLoadedMsg{err: &api.APIError{Status: http.StatusInternalServerError}})

	got := next.(Model)
	assert.Equal(t, modeChat, got.mode)
	assert.Equal(t, controller.AuthLoggedIn, got.auth.Phase())
}

func TestHistoryUnauthorizedReturnsToSignIn(t *testing.T) {
	m := loggedInModel()
	m.resolver.Navigate("s1")

	next, _ := m.Update(controller.HistoryLoadedMsg{
		SessionID: "s1",
		Err:       &api.APIError{Status: http.StatusUnauthorized},
	})

	got := next.(Model)
	assert.Equal(t, modeAuth, got.mode)
	assert.Equal(t, controller.AuthLoggedOut, got.auth.Phase())
}
