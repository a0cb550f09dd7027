package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"

	"github.com/RivanJarjes/score-mvp-prototype/config"
	"github.com/RivanJarjes/score-mvp-prototype/model"
)

// Client talks JSON to the tutor service. Auth is an opaque server-issued
// session cookie held in the jar; no timeout is set because the caller never
// cancels in-flight requests.
type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		base: base,
		http: &http.Client{Jar: jar},
	}
}

// Identity is the authenticated user, as returned by GET /me.
type Identity struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Student  bool   `json:"student,omitempty"`
}

type queryRequest struct {
	Problem string `json:"problem"`
	// Explicit nulls: the backend distinguishes "no code supplied" and
	// "no session yet" from empty strings.
	Code      *string `json:"code"`
	SessionID *string `json:"session_id"`
}

// QueryResult is the POST /query response. MessageID is empty on current
// backends; when present it is the server-assigned id of the user turn.
type QueryResult struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	MessageID string `json:"message_id"`
}

type sessionListResponse struct {
	Sessions []model.SessionSummary `json:"sessions"`
}

// Me reports whether the session cookie is still good and for whom.
func (c *Client) Me() (Identity, error) {
	var id Identity
	err := c.do(http.MethodGet, "/me", nil, &id)
	return id, err
}

func (c *Client) Login(email, password string) error {
	return c.do(http.MethodPost, "/auth/login", credentials{Email: email, Password: password}, nil)
}

func (c *Client) Register(email, password string) error {
	return c.do(http.MethodPost, "/auth/register", credentials{Email: email, Password: password, Student: true}, nil)
}

func (c *Client) Logout() error {
	return c.do(http.MethodPost, "/auth/logout", nil, nil)
}

// Query submits one problem. code is nil when no code was supplied;
// sessionID is empty when the server should mint a new session.
func (c *Client) Query(problem string, code *string, sessionID string) (QueryResult, error) {
	req := queryRequest{Problem: problem, Code: code}
	if sessionID != "" {
		req.SessionID = &sessionID
	}
	var res QueryResult
	err := c.do(http.MethodPost, "/query", req, &res)
	return res, err
}

func (c *Client) ListSessions() ([]model.SessionSummary, error) {
	var res sessionListResponse
	if err := c.do(http.MethodGet, "/sessions", nil, &res); err != nil {
		return nil, err
	}
	return res.Sessions, nil
}

func (c *Client) SessionHistory(id string) (model.SessionHistory, error) {
	var res model.SessionHistory
	err := c.do(http.MethodGet, "/sessions/"+id, nil, &res)
	return res, err
}

func (c *Client) do(method, path string, body, out any) error {
	var rdr *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(buf)
	} else {
		rdr = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, c.base+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		config.Logger.WithError(err).Warnf("%s %s failed", method, path)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Detail: readDetail(resp)}
		config.Logger.WithField("status", resp.StatusCode).Warnf("%s %s rejected", method, path)
		return apiErr
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// readDetail pulls the {"detail": "..."} message FastAPI-style bodies carry
// on failure. An unreadable body yields an empty detail, not an error.
func readDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ""
	}
	return body.Detail
}
