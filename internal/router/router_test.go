package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"askboard/internal/config"
	"askboard/internal/db"
	"askboard/internal/models"
	"askboard/internal/notify"
	"askboard/internal/services"
	"askboard/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.Open(config.DBConfig{URL: "sqlite://:memory:", MaxConns: 1}, nil)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	require.NoError(t, db.SeedAdmin(gdb, config.AdminConfig{Email: "admin@example.com", Password: "adminpass"}, nil))

	cache, err := utils.NewCache[[]models.Question](16, time.Minute)
	require.NoError(t, err)
	svc := services.New(gdb, cache, notify.NewInline(notify.NewRecorder(gdb, nil, "")))

	srv := httptest.NewServer(New(Options{
		DB:            gdb,
		Services:      svc,
		SessionName:   "askboard_test",
		SessionSecret: "test-secret",
	}))
	t.Cleanup(srv.Close)
	return srv
}

type client struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, srv *httptest.Server) *client {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{t: t, base: srv.URL, http: &http.Client{Jar: jar}}
}

func (c *client) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(c.t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func (c *client) signup(name string) string {
	c.t.Helper()
	status, body := c.do(http.MethodPost, "/signup", map[string]string{
		"username": name, "email": name + "@example.com", "password": "secret1",
	})
	require.Equal(c.t, http.StatusCreated, status, body)
	assert.NotContains(c.t, body, "password")
	return body["id"].(string)
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHTTP_QuestionReplyVoteFlow(t *testing.T) {
	srv := newTestServer(t)
	alice := newClient(t, srv)
	bob := newClient(t, srv)
	anon := newClient(t, srv)

	alice.signup("alice")
	bob.signup("bob")

	status, body := anon.do(http.MethodPost, "/questions", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "unauthenticated", errorCode(body))

	status, body = alice.do(http.MethodPost, "/questions", map[string]any{
		"title": "Why **gorm**?", "description": "Use *markdown*", "tags": []string{"Go", "go"},
	})
	require.Equal(t, http.StatusCreated, status, body)
	qid := body["id"].(string)
	assert.Contains(t, body["description_html"], "<em>markdown</em>")
	assert.Equal(t, []any{"go"}, body["tags"])

	status, body = anon.do(http.MethodGet, "/questions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["questions"], 1)

	status, body = bob.do(http.MethodPost, "/questions/"+qid+"/replies", map[string]string{"content": "Because."})
	require.Equal(t, http.StatusCreated, status, body)
	rid := body["id"].(string)

	status, body = alice.do(http.MethodPost, "/replies/"+rid+"/replies", map[string]string{"content": "Thanks"})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, qid, body["question_id"])

	status, body = anon.do(http.MethodGet, "/replies/"+rid+"/replies", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["replies"], 1)

	// The reply owner cannot accept on the asker's behalf.
	status, body = bob.do(http.MethodPost, "/replies/"+rid+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", errorCode(body))
	assert.NotEmpty(t, body["error"].(map[string]any)["request_id"])

	status, body = alice.do(http.MethodPost, "/replies/"+rid+"/accept", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_accepted"])

	status, body = alice.do(http.MethodPost, "/replies/"+rid+"/vote", map[string]int{"value": 1})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["votes"])

	status, body = alice.do(http.MethodPost, "/replies/"+rid+"/vote", map[string]int{"value": 1})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "already voted this way", body["error"].(map[string]any)["message"])

	status, body = alice.do(http.MethodPost, "/replies/"+rid+"/vote", map[string]int{"value": 5})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid_argument", errorCode(body))

	status, body = alice.do(http.MethodDelete, "/replies/"+rid+"/vote", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["votes"])

	// bob: reply notification went to alice; bob got nested-reply, accepted, vote.
	status, body = bob.do(http.MethodGet, "/notifications/unread-count", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 3, body["unread_count"])

	status, body = alice.do(http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, status)
	list := body["notifications"].([]any)
	require.Len(t, list, 1)
	first := list[0].(map[string]any)
	assert.Equal(t, "reply", first["type"])
	assert.Equal(t, "/questions/"+qid, first["link"])

	status, _ = alice.do(http.MethodPost, "/notifications/"+first["id"].(string)+"/read", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = bob.do(http.MethodPost, "/notifications/mark-all", nil)
	assert.Equal(t, http.StatusNoContent, status)
	_, body = bob.do(http.MethodGet, "/me", nil)
	assert.EqualValues(t, 0, body["unread_count"])

	status, _ = bob.do(http.MethodDelete, "/questions/"+qid, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = alice.do(http.MethodDelete, "/questions/"+qid, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = anon.do(http.MethodGet, "/replies/"+rid+"/replies", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHTTP_AdminAndReports(t *testing.T) {
	srv := newTestServer(t)
	admin := newClient(t, srv)
	alice := newClient(t, srv)

	aliceID := alice.signup("alice")

	status, body := alice.do(http.MethodPost, "/reports", map[string]string{
		"target_type": "user", "target_id": "someone", "reason": "rude",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, _ = alice.do(http.MethodGet, "/admin/users", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = admin.do(http.MethodPost, "/login", map[string]string{"email": "admin@example.com", "password": "adminpass"})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "admin", body["role"])

	status, body = admin.do(http.MethodGet, "/admin/reports", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["reports"], 1)

	status, body = admin.do(http.MethodPut, "/admin/users/"+aliceID+"/ban", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["is_banned"])

	// Banned users keep their session but cannot post.
	status, body = alice.do(http.MethodPost, "/questions", map[string]any{"title": "still here"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "account is banned", body["error"].(map[string]any)["message"])

	status, _ = admin.do(http.MethodDelete, "/admin/content/does-not-exist", nil)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = alice.do(http.MethodPost, "/logout", nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = alice.do(http.MethodPost, "/login", map[string]string{"email": "alice@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusForbidden, status, body)
}

func TestHTTP_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)

	status, body := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, _ = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)

	status, body = c.do(http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", errorCode(body))
}
