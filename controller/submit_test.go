package controller

import (
	"net/http"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/model"
)

type submitEnv struct {
	backend   *testBackend
	auth      *AuthManager
	resolver  *SessionResolver
	timeline  *Timeline
	submitter *Submitter
	refreshes int
}

func newSubmitEnv(t *testing.T) *submitEnv {
	t.Helper()
	b := newBackend(t)
	c := b.client()
	env := &submitEnv{backend: b}
	env.timeline = NewTimeline()
	env.resolver = NewSessionResolver(c, env.timeline, func() tea.Cmd {
		env.refreshes++
		return nil
	})
	env.auth = NewAuthManager(c)
	env.auth.OnLogout(env.resolver.Reset)
	env.auth.ApplyStatus(StatusCheckedMsg{Email: "student@school.edu"})
	env.submitter = NewSubmitter(c, env.auth, env.resolver, env.timeline)
	return env
}

func TestBlankProblemNeverReachesNetwork(t *testing.T) {
	env := newSubmitEnv(t)

	assert.Nil(t, env.submitter.Submit("   \n\t", "some code"))

	assert.Zero(t, env.timeline.Len())
	assert.Equal(t, int32(0), env.backend.queryCalls.Load())
	assert.NotEmpty(t, env.submitter.Notice())
	assert.False(t, env.submitter.Busy())
}

func TestSubmitNewSessionPromotes(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.queryResp = api.QueryResult{Response: "Use range(n-1).", SessionID: "abc"}

	cmd := env.submitter.Submit("Fix off-by-one", "for i in range(n): arr[i+1]")
	require.NotNil(t, cmd)
	assert.True(t, env.submitter.Busy())

	// optimistic user turn is visible before the response
	require.Equal(t, 1, env.timeline.Len())
	optimistic := env.timeline.Messages()[0]
	assert.True(t, strings.HasPrefix(optimistic.ID, "tmp-"))
	assert.Equal(t, model.RoleUser, optimistic.Role)

	promote := env.submitter.Apply(cmd().(QueryResultMsg))
	require.NotNil(t, promote, "first successful submission promotes the new session id")

	require.Equal(t, 2, env.timeline.Len())
	user, reply := env.timeline.Messages()[0], env.timeline.Messages()[1]
	assert.False(t, strings.HasPrefix(user.ID, "tmp-"), "optimistic id reconciled to a stable one")
	assert.Equal(t, optimistic.Content, user.Content)
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.Equal(t, "Use range(n-1).", reply.Content)

	assert.Equal(t, "abc", env.resolver.Current())
	assert.Equal(t, "abc", env.resolver.Nav())
	assert.Equal(t, 1, env.refreshes)
	assert.False(t, env.submitter.Busy())
}

func TestSubmitUsesServerMessageIDWhenProvided(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.queryResp = api.QueryResult{Response: "ok", SessionID: "abc", MessageID: "srv-42"}

	cmd := env.submitter.Submit("question", "")
	env.submitter.Apply(cmd().(QueryResultMsg))

	assert.Equal(t, "srv-42", env.timeline.Messages()[0].ID)
}

func TestSubmitExistingSessionDoesNotPromote(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.histories["s1"] = historyFixture("s1", "T")
	fetch := env.resolver.Navigate("s1")
	env.resolver.ApplyHistory(fetch().(HistoryLoadedMsg))

	env.backend.queryResp = api.QueryResult{Response: "more help", SessionID: "s1"}
	cmd := env.submitter.Submit("follow-up", "")
	require.NotNil(t, cmd)

	promote := env.submitter.Apply(cmd().(QueryResultMsg))
	assert.Nil(t, promote)
	assert.Zero(t, env.refreshes)
	assert.Equal(t, "s1", env.resolver.Current())
	assert.Equal(t, 4, env.timeline.Len())
}

func TestSubmitUnauthorizedForcesLogout(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.queryStatus = http.StatusUnauthorized

	cmd := env.submitter.Submit("question", "")
	env.submitter.Apply(cmd().(QueryResultMsg))

	require.Equal(t, 2, env.timeline.Len())
	errMsg := env.timeline.Messages()[1]
	assert.True(t, errMsg.Err)
	assert.Equal(t, model.RoleAssistant, errMsg.Role)
	assert.Contains(t, errMsg.Content, "signed in")

	assert.Equal(t, AuthLoggedOut, env.auth.Phase())
	assert.False(t, env.submitter.Busy())
}

func TestSubmitServerErrorKeepsState(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.histories["s1"] = historyFixture("s1", "T")
	fetch := env.resolver.Navigate("s1")
	env.resolver.ApplyHistory(fetch().(HistoryLoadedMsg))

	env.backend.queryStatus = http.StatusInternalServerError
	cmd := env.submitter.Submit("question", "")
	env.submitter.Apply(cmd().(QueryResultMsg))

	// optimistic turn stays, generic error is appended after it
	require.Equal(t, 4, env.timeline.Len())
	assert.Equal(t, model.RoleUser, env.timeline.Messages()[2].Role)
	assert.True(t, env.timeline.Messages()[3].Err)

	assert.Equal(t, AuthLoggedIn, env.auth.Phase(), "only 401 touches auth state")
	assert.Equal(t, "s1", env.resolver.Current())
}

func TestAwaitingFlagBlocksConcurrentSubmission(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.queryResp = api.QueryResult{Response: "ok", SessionID: "abc"}

	first := env.submitter.Submit("question", "")
	require.NotNil(t, first)

	assert.Nil(t, env.submitter.Submit("another", ""))
	assert.Equal(t, 1, env.timeline.Len(), "second submission never mutated the timeline")

	env.submitter.Apply(first().(QueryResultMsg))
	assert.False(t, env.submitter.Busy())
	assert.NotNil(t, env.submitter.Submit("another", ""))
}

func TestResponseForLeftSessionIsDropped(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.histories["s1"] = historyFixture("s1", "First")
	env.backend.histories["s2"] = historyFixture("s2", "Second")
	fetch := env.resolver.Navigate("s1")
	env.resolver.ApplyHistory(fetch().(HistoryLoadedMsg))

	env.backend.queryResp = api.QueryResult{Response: "answer for s1", SessionID: "s1"}
	cmd := env.submitter.Submit("follow-up", "")
	pending := cmd().(QueryResultMsg)

	// user switches sessions while the round trip is in flight
	fetch2 := env.resolver.Navigate("s2")
	env.resolver.ApplyHistory(fetch2().(HistoryLoadedMsg))

	promote := env.submitter.Apply(pending)

	assert.Nil(t, promote)
	assert.False(t, env.submitter.Busy())
	assert.Equal(t, "s2", env.resolver.Current())
	require.Equal(t, 2, env.timeline.Len(), "s2 history only, no leaked reply")
	for _, msg := range env.timeline.Messages() {
		assert.NotEqual(t, "answer for s1", msg.Content)
	}
}

func TestResponseAfterStartNewIsDropped(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.queryResp = api.QueryResult{Response: "late answer", SessionID: "abc"}

	cmd := env.submitter.Submit("question", "")
	pending := cmd().(QueryResultMsg)

	// fresh conversation requested before the response lands
	env.resolver.StartNew()

	promote := env.submitter.Apply(pending)

	assert.Nil(t, promote)
	assert.Zero(t, env.timeline.Len())
	assert.Empty(t, env.resolver.Current(), "discarded submission never promotes")
	assert.Zero(t, env.refreshes)
	assert.False(t, env.submitter.Busy())
}

func TestStaleUnauthorizedStillForcesLogout(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.histories["s1"] = historyFixture("s1", "First")
	fetch := env.resolver.Navigate("s1")
	env.resolver.ApplyHistory(fetch().(HistoryLoadedMsg))

	env.backend.queryStatus = http.StatusUnauthorized
	cmd := env.submitter.Submit("question", "")
	pending := cmd().(QueryResultMsg)

	env.resolver.ClearNavigation()

	env.submitter.Apply(pending)

	assert.Equal(t, AuthLoggedOut, env.auth.Phase())
	assert.Zero(t, env.timeline.Len(), "no error notice in a timeline the request did not belong to")
}

func TestCodeSentAsExplicitNullWhenBlank(t *testing.T) {
	env := newSubmitEnv(t)
	env.backend.queryResp = api.QueryResult{Response: "ok", SessionID: "abc"}

	cmd := env.submitter.Submit("question", "   ")
	env.submitter.Apply(cmd().(QueryResultMsg))

	assert.Nil(t, env.timeline.Messages()[0].Code)
}
