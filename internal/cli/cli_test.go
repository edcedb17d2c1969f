package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/client"
	"taskdeck/internal/countdown"
	"taskdeck/internal/models"
)

func init() {
	color.NoColor = true
}

// fakeServer is an in-memory stand-in for the REST API.
type fakeServer struct {
	mu     sync.Mutex
	todos  []models.Todo
	nextID int
	token  string
}

func (s *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reply := func(status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	path := strings.TrimPrefix(r.URL.Path, "/api")
	if path == "/auth/login" {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "secret123" {
			reply(http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}
		reply(http.StatusOK, models.LoginResponse{AccessToken: s.token, TokenType: "Bearer", ExpiresIn: 3600})
		return
	}
	if r.Header.Get("Authorization") != "Bearer "+s.token {
		reply(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	switch {
	case path == "/auth/logout":
		reply(http.StatusOK, map[string]string{"message": "Logged out"})
	case path == "/todos" && r.Method == http.MethodGet:
		reply(http.StatusOK, s.todos)
	case path == "/todos" && r.Method == http.MethodPost:
		var in models.TodoInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		deadline, _ := time.Parse(time.RFC3339, in.Deadline)
		s.nextID++
		t := models.Todo{
			ID:        "id-" + string(rune('0'+s.nextID)) + "-xxxxxxxx",
			Title:     in.Title,
			Priority:  in.Priority,
			Deadline:  deadline,
			CreatedAt: time.Now().UTC(),
		}
		s.todos = append([]models.Todo{t}, s.todos...)
		reply(http.StatusCreated, t)
	case strings.HasPrefix(path, "/todos/"):
		id := strings.TrimPrefix(path, "/todos/")
		for i, t := range s.todos {
			if t.ID != id {
				continue
			}
			switch r.Method {
			case http.MethodPut:
				var in models.TodoInput
				_ = json.NewDecoder(r.Body).Decode(&in)
				t.Title, t.Priority, t.IsCompleted = in.Title, in.Priority, in.IsCompleted
				t.Deadline, _ = time.Parse(time.RFC3339, in.Deadline)
				s.todos[i] = t
				reply(http.StatusOK, t)
			case http.MethodDelete:
				s.todos = append(s.todos[:i], s.todos[i+1:]...)
				reply(http.StatusOK, map[string]string{"message": "Todo deleted"})
			default:
				reply(http.StatusOK, t)
			}
			return
		}
		reply(http.StatusNotFound, map[string]string{"error": "todo not found"})
	case path == "/telegram/status":
		reply(http.StatusOK, models.TelegramStatus{Success: true, Linked: true, LinkInfo: &models.LinkInfo{ChatID: 77, Notify: true}})
	default:
		http.NotFound(w, r)
	}
}

func (s *fakeServer) list() []models.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Todo(nil), s.todos...)
}

type harness struct {
	srv    *fakeServer
	cli    *CLI
	out    *bytes.Buffer
	errOut *bytes.Buffer
	cfg    Config
}

func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	fs := &fakeServer{token: "tok"}
	ts := httptest.NewServer(fs)
	t.Cleanup(ts.Close)

	h := &harness{srv: fs, out: &bytes.Buffer{}, errOut: &bytes.Buffer{}}
	h.cfg = Config{
		APIURL:      ts.URL + "/api",
		SessionPath: filepath.Join(t.TempDir(), "session.yaml"),
		Out:         h.out,
		Err:         h.errOut,
		In:          strings.NewReader(input),
	}
	h.cli = New(h.cfg)
	return h
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()
	return h.cli.Run(context.Background(), args)
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.run(t, "login", "-u", "alice", "-p", "secret123"))
}

func TestLogin_SavesSession(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	assert.Contains(t, h.out.String(), "logged in as alice")

	sess, err := client.NewSessionStore(h.cfg.SessionPath).Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	h := newHarness(t, "secret123\n")
	require.NoError(t, h.run(t, "login", "-u", "alice"))
	assert.Contains(t, h.out.String(), "Password: ")
}

func TestLogin_BadPassword(t *testing.T) {
	h := newHarness(t, "")
	err := h.run(t, "login", "-u", "alice", "-p", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid username or password")
}

func TestListWithoutSession(t *testing.T) {
	h := newHarness(t, "")
	err := h.run(t, "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "taskdeck login")
}

func TestAddListDoneRemove(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)

	require.NoError(t, h.run(t, "add", "-title", "Write report", "-priority", "9", "-deadline", "+3d"))
	assert.Contains(t, h.out.String(), "Added task: Write report")
	require.NoError(t, h.run(t, "add", "-deadline", "+10d", "Buy", "milk"))

	require.NoError(t, h.run(t, "list", "-bucket", "high"))
	out := h.out.String()
	assert.Contains(t, out, "Write report")
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "2 tasks, 0 completed, efficiency 0.0%")

	require.NoError(t, h.run(t, "done", "id-1"))
	assert.Contains(t, h.out.String(), "Write report completed")
	assert.Contains(t, h.out.String(), "2 tasks, 1 completed, efficiency 50.0%")

	require.NoError(t, h.run(t, "edit", "id-2", "-priority", "2"))
	assert.Equal(t, 2, h.srv.list()[0].Priority)

	require.NoError(t, h.run(t, "rm", "id-2"))
	assert.Len(t, h.srv.list(), 1)

	err := h.run(t, "rm", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no task matches")
}

func TestAdd_InvalidDraft(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	err := h.run(t, "add", "-title", "x", "-priority", "11", "-deadline", "+1d")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priority must be between 1 and 10")
	assert.Empty(t, h.srv.list())
}

func TestRegister_ValidatesLocally(t *testing.T) {
	h := newHarness(t, "")
	err := h.run(t, "register", "-name", "A", "-username", "a", "-email", "bad", "-phone", "87001234567", "-password", "longenough")
	require.Error(t, err)
	assert.Equal(t, "invalid email format", err.Error())

	err = h.run(t, "register", "-name", "A", "-username", "a", "-email", "a@b.co", "-phone", "123", "-password", "longenough")
	require.Error(t, err)
	assert.Equal(t, "phone must be exactly 11 digits", err.Error())
}

func TestTelegramStatus(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	require.NoError(t, h.run(t, "telegram"))
	assert.Contains(t, h.out.String(), "linked to chat 77")
	assert.Contains(t, h.out.String(), "notifications on")
}

func TestWatchOnce(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	require.NoError(t, h.run(t, "add", "-title", "soon", "-deadline", "+1h"))
	require.NoError(t, h.run(t, "watch", "-once"))
	assert.Contains(t, h.out.String(), "0d 0h 59m")
	assert.Contains(t, h.out.String(), "soon")
}

func TestLogout(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	require.NoError(t, h.run(t, "logout"))
	_, err := client.NewSessionStore(h.cfg.SessionPath).Load()
	assert.ErrorIs(t, err, client.ErrNotAuthenticated)
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t, "")
	assert.Error(t, h.run(t, "frobnicate"))
	assert.Contains(t, h.errOut.String(), "usage: taskdeck")
}

func TestParseDeadline(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	got, err := parseDeadline("+2d", now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 2), got)

	got, err = parseDeadline("+90m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(90*time.Minute), got)

	got, err = parseDeadline("2030-02-03T04:05:06Z", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2030, 2, 3, 4, 5, 6, 0, time.UTC)))

	_, err = parseDeadline("2030-02-03 04:05", now)
	assert.NoError(t, err)

	got, err = parseDeadline("", now)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseDeadline("tomorrow", now)
	assert.Error(t, err)
}

func TestSplitID_RejectsEmpty(t *testing.T) {
	for _, args := range [][]string{nil, {""}, {"  "}, {"-title"}} {
		_, _, err := splitID("done", args)
		assert.Error(t, err, "args %q", args)
	}
	id, rest, err := splitID("edit", []string{"abc", "-title", "x"})
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
	assert.Equal(t, []string{"-title", "x"}, rest)
}

func TestDoneWithEmptyIDLeavesSingleTask(t *testing.T) {
	h := newHarness(t, "")
	h.login(t)
	require.NoError(t, h.run(t, "add", "-title", "only", "-deadline", "+1d"))

	require.Error(t, h.run(t, "done", ""))
	require.Error(t, h.run(t, "rm", ""))
	todos := h.srv.list()
	require.Len(t, todos, 1)
	assert.False(t, todos[0].IsCompleted)
}

func TestPruneStates(t *testing.T) {
	var mu sync.Mutex
	states := map[string]countdown.State{
		"a": {Text: "1d 0h 0m 0s", Tier: countdown.TierCritical},
		"b": {Text: "Past deadline", Tier: countdown.TierOverdue},
	}
	pruneStates(&mu, states, func(id string) bool { return id == "a" })
	assert.Contains(t, states, "a")
	assert.NotContains(t, states, "b")
}
