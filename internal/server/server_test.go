package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kingrea/taskboard/internal/auth"
	"github.com/kingrea/taskboard/internal/config"
	"github.com/kingrea/taskboard/internal/model"
	"github.com/kingrea/taskboard/internal/store"
)

const (
	testEmail    = "me@example.com"
	testPassword = "hunter2"
)

type harness struct {
	srv   *Server
	store *store.Store
	token string
}

func newHarness(t *testing.T, maxBody int64) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	gate := auth.NewGate(auth.Credentials{Email: testEmail, Password: testPassword, Secret: "secret"})
	srv := NewServer(Settings{Host: "127.0.0.1", MaxBodyBytes: maxBody}, st, gate)
	h := &harness{srv: srv, store: st}
	session, err := gate.Login(testEmail, testPassword)
	require.NoError(t, err)
	h.token = session.Token
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return h.doWith(t, method, path, body, "Bearer "+h.token)
}

func (h *harness) doWith(t *testing.T, method, path string, body any, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestLoginIssuesTokenAndCookie(t *testing.T) {
	h := newHarness(t, 0)
	rec := h.doWith(t, http.MethodPost, "/api/login", loginRequest{Email: testEmail, Password: testPassword}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	session := decode[auth.Session](t, rec)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, "1", session.User.ID)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookie+"=")

	rec = h.doWith(t, http.MethodPost, "/api/login", loginRequest{Email: testEmail, Password: "nope"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutesRequireSession(t *testing.T) {
	h := newHarness(t, 0)
	rec := h.doWith(t, http.MethodGet, "/api/projects", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = h.doWith(t, http.MethodGet, "/api/projects", nil, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: h.token})
	cookieRec := httptest.NewRecorder()
	h.srv.Handler().ServeHTTP(cookieRec, req)
	assert.Equal(t, http.StatusOK, cookieRec.Code)

	rec = h.doWith(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProjectAndTaskLifecycle(t *testing.T) {
	h := newHarness(t, 0)

	rec := h.do(t, http.MethodPost, "/api/projects", model.ProjectInput{Name: "Alpha", Key: "alp"})
	require.Equal(t, http.StatusCreated, rec.Code)
	alpha := decode[model.Project](t, rec)
	assert.Equal(t, "ALP", alpha.Key)

	rec = h.do(t, http.MethodPost, "/api/projects/"+alpha.ID+"/tasks", model.TaskInput{Title: "Write docs"})
	require.Equal(t, http.StatusCreated, rec.Code)
	task := decode[model.Task](t, rec)
	assert.Equal(t, model.StatusTodo, task.Status)
	assert.Equal(t, alpha.ID, task.ProjectID)

	rec = h.do(t, http.MethodPatch, "/api/tasks/"+task.ID, model.StatusPatch(model.StatusDone))
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[model.Task](t, rec)
	assert.Equal(t, model.StatusDone, moved.Status)
	assert.Equal(t, "Write docs", moved.Title)

	rec = h.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decode[[]model.Project](t, rec)
	require.Len(t, projects, 1)
	require.Len(t, projects[0].Tasks, 1)
	assert.Equal(t, model.StatusDone, projects[0].Tasks[0].Status)

	archived := model.ProjectArchived
	rec = h.do(t, http.MethodPatch, "/api/projects/"+alpha.ID, model.ProjectPatch{Status: &archived})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.ProjectArchived, decode[model.Project](t, rec).Status)

	rec = h.do(t, http.MethodGet, "/api/projects/"+alpha.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/tasks/"+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]bool{"success": true}, decode[map[string]bool](t, rec))

	rec = h.do(t, http.MethodDelete, "/api/projects/"+alpha.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodGet, "/api/projects/"+alpha.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestErrorStatuses(t *testing.T) {
	h := newHarness(t, 128)

	rec := h.do(t, http.MethodPost, "/api/projects", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", decode[map[string]string](t, rec)["error"])

	rec = h.do(t, http.MethodPost, "/api/projects", model.ProjectInput{Name: "", Key: "X"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/projects/missing/tasks", model.TaskInput{Title: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodPatch, "/api/tasks/missing", model.StatusPatch(model.StatusDone))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/projects/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodPatch, "/api/projects/missing", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no fields to update", decode[map[string]string](t, rec)["error"])

	rec = h.do(t, http.MethodPatch, "/api/tasks/missing", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := `{"name":"` + strings.Repeat("a", 200) + `","key":"BIG"}`
	rec = h.do(t, http.MethodPost, "/api/projects", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

type failingRepo struct{ Repository }

func (failingRepo) ListProjects(context.Context) ([]model.Project, error) {
	return nil, errors.New("disk on fire")
}

func TestRepositoryFailureIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gate := auth.NewGate(auth.Credentials{Email: testEmail, Password: testPassword, Secret: "secret"})
	srv := NewServer(Settings{}, failingRepo{}, gate)
	session, err := gate.Login(testEmail, testPassword)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{File: config.FileConfig{Server: config.ServerConfig{Host: " 0.0.0.0 ", Port: 9001, MaxBodyBytes: 10}}}
	settings := SettingsFromConfig(cfg)
	assert.Equal(t, "0.0.0.0:9001", settings.Address())
	assert.Equal(t, int64(10), settings.MaxBodyBytes)
	assert.Equal(t, DefaultReadTimeout, settings.ReadTimeout)

	defaults := SettingsFromConfig(nil)
	assert.Equal(t, "http://127.0.0.1:8787", defaults.URL())
}

func TestServerStartAndShutdownDoNotLeak(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	gin.SetMode(gin.TestMode)
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	defer st.Close()

	fixed := time.Unix(1730000000, 0).UTC()
	gate := auth.NewGate(auth.Credentials{Email: testEmail, Password: testPassword, Secret: "secret"})
	srv := NewServer(Settings{Host: "127.0.0.1", Port: 0}, st, gate, WithClock(func() time.Time { return fixed }))
	require.NoError(t, srv.Start(context.Background()))
	require.Error(t, srv.Start(context.Background()))
	assert.Equal(t, StatusReady, srv.Status())

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get(srv.BaseURL() + "/health")
	require.NoError(t, err)
	var health healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, "ready", health.Status)
	assert.Equal(t, ProtocolVersion, health.Version)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.Equal(t, StatusDraining, srv.Status())
	assert.Empty(t, srv.Addr())
	require.NoError(t, srv.Shutdown(context.Background()))
}
