package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/RivanJarjes/score-mvp-prototype/api"
	"github.com/RivanJarjes/score-mvp-prototype/model"
)

// testBackend is a fake tutor service for controller tests.
type testBackend struct {
	srv *httptest.Server

	meStatus      int
	meEmail       string
	loginStatus   int
	loginDetail   string
	queryStatus   int
	queryResp     api.QueryResult
	historyStatus int
	histories     map[string]model.SessionHistory

	meCalls      atomic.Int32
	queryCalls   atomic.Int32
	historyCalls atomic.Int32
	logoutCalls  atomic.Int32
}

func newBackend(t *testing.T) *testBackend {
	t.Helper()
	b := &testBackend{
		meStatus:    http.StatusOK,
		meEmail:     "student@school.edu",
		loginStatus: http.StatusOK,
		queryStatus: http.StatusOK,
		histories:   map[string]model.SessionHistory{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		b.meCalls.Add(1)
		if b.meStatus != http.StatusOK {
			writeDetail(w, b.meStatus, "Not authenticated")
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"id": 1, "email": b.meEmail})
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		if b.loginStatus != http.StatusOK {
			writeDetail(w, b.loginStatus, b.loginDetail)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		if b.loginStatus != http.StatusOK {
			writeDetail(w, b.loginStatus, b.loginDetail)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		b.logoutCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /query", func(w http.ResponseWriter, r *http.Request) {
		b.queryCalls.Add(1)
		if b.queryStatus != http.StatusOK {
			writeDetail(w, b.queryStatus, "")
			return
		}
		json.NewEncoder(w).Encode(b.queryResp)
	})
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"sessions": []model.SessionSummary{}})
	})
	mux.HandleFunc("GET /sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.historyCalls.Add(1)
		if b.historyStatus != 0 {
			writeDetail(w, b.historyStatus, "Not authenticated")
			return
		}
		hist, ok := b.histories[r.PathValue("id")]
		if !ok {
			writeDetail(w, http.StatusNotFound, "Session not found")
			return
		}
		json.NewEncoder(w).Encode(hist)
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *testBackend) client() *api.Client {
	return api.NewClient(b.srv.URL)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func strPtr(s string) *string { return &s }

// historyFixture builds a small two-turn conversation for a session.
func historyFixture(id, title string) model.SessionHistory {
	return model.SessionHistory{
		SessionID: id,
		Title:     strPtr(title),
		Messages: []model.Message{
			{ID: id + "-m1", Role: model.RoleUser, Content: "question", Problem: strPtr("question")},
			{ID: id + "-m2", Role: model.RoleAssistant, Content: "answer"},
		},
	}
}
