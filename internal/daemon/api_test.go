package daemon

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"termchat/internal/client"
	"termchat/internal/store"
	"termchat/internal/types"
)

func newTestServer(t *testing.T, tokens ...string) *httptest.Server {
	t.Helper()
	repo, err := store.NewBboltRepository(filepath.Join(t.TempDir(), "chats.db"))
	if err != nil {
		t.Fatalf("NewBboltRepository: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if len(tokens) == 0 {
		tokens = []string{"secret"}
	}
	d := New("127.0.0.1:0", tokens, "test-version", repo)
	server := httptest.NewServer(d.Handler(nil))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, server *httptest.Server, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := server.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestChatsEndpointLifecycle(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodPost, "/api/chats", "secret", CreateChatRequest{Name: " "})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d body=%s", resp.StatusCode, body)
	}
	var created types.Chat
	if err := json.Unmarshal(body, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Name != defaultChatName || created.MessageCount != 0 {
		t.Fatalf("unexpected chat: %#v", created)
	}

	resp, body = doRequest(t, server, http.MethodPatch, "/api/chats", "secret", RenameChatRequest{ChatID: created.ID, NewName: "Grep"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status = %d body=%s", resp.StatusCode, body)
	}

	resp, body = doRequest(t, server, http.MethodGet, "/api/chats", "secret", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var chats []types.Chat
	if err := json.Unmarshal(body, &chats); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(chats) != 1 || chats[0].Name != "Grep" {
		t.Fatalf("unexpected list: %#v", chats)
	}

	resp, _ = doRequest(t, server, http.MethodDelete, "/api/chats", "secret", DeleteChatRequest{ChatID: created.ID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, body = doRequest(t, server, http.MethodDelete, "/api/chats", "secret", DeleteChatRequest{ChatID: created.ID})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d body=%s", resp.StatusCode, body)
	}
}

func TestChatsEndpointRejectsBadInput(t *testing.T) {
	server := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{name: "unknown-field", method: http.MethodPost, path: "/api/chats", body: map[string]string{"title": "x"}, want: http.StatusBadRequest},
		{name: "delete-missing-id", method: http.MethodDelete, path: "/api/chats", body: DeleteChatRequest{}, want: http.StatusBadRequest},
		{name: "rename-missing-id", method: http.MethodPatch, path: "/api/chats", body: RenameChatRequest{NewName: "x"}, want: http.StatusBadRequest},
		{name: "rename-unknown", method: http.MethodPatch, path: "/api/chats", body: RenameChatRequest{ChatID: "nope", NewName: "x"}, want: http.StatusNotFound},
		{name: "chats-put", method: http.MethodPut, path: "/api/chats", want: http.StatusMethodNotAllowed},
		{name: "send-get", method: http.MethodGet, path: "/api/chat", want: http.StatusMethodNotAllowed},
		{name: "send-empty", method: http.MethodPost, path: "/api/chat", body: SendMessageRequest{ChatID: "x"}, want: http.StatusBadRequest},
		{name: "send-unknown", method: http.MethodPost, path: "/api/chat", body: SendMessageRequest{ChatID: "x", Message: "hi"}, want: http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doRequest(t, server, tc.method, tc.path, "secret", tc.body)
			if resp.StatusCode != tc.want {
				t.Fatalf("status = %d, want %d body=%s", resp.StatusCode, tc.want, body)
			}
			var payload errorResponse
			if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
				t.Fatalf("expected error payload, got %s", body)
			}
		})
	}
}

func TestChatsArePartitionedByToken(t *testing.T) {
	server := newTestServer(t, "alice", "bob")

	resp, _ := doRequest(t, server, http.MethodPost, "/api/chats", "alice", CreateChatRequest{Name: "mine"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	_, body := doRequest(t, server, http.MethodGet, "/api/chats", "bob", nil)
	var chats []types.Chat
	if err := json.Unmarshal(body, &chats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("bob should not see alice's chats: %#v", chats)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	server := newTestServer(t)

	resp, body := doRequest(t, server, http.MethodGet, "/health", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "test-version") {
		t.Fatalf("unexpected health: %d %s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	doRequest(t, server, http.MethodGet, "/api/chats", "secret", nil)
	resp, body = doRequest(t, server, http.MethodGet, "/metrics", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
	text := string(body)
	if !strings.Contains(text, `termchat_http_requests_total{method="GET",path="/api/chats",status="200"} 1`) {
		t.Fatalf("expected request counter in metrics:\n%s", text)
	}
	if !strings.Contains(text, `termchat_chat_operations_total{op="list",outcome="ok"} 1`) {
		t.Fatalf("expected chat op counter in metrics:\n%s", text)
	}
}

func TestShutdownUnavailableWithoutServer(t *testing.T) {
	server := newTestServer(t)
	resp, _ := doRequest(t, server, http.MethodPost, "/api/shutdown", "secret", nil)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

// TestClientAgainstServer runs the real client against the handler so both
// sides agree on the wire contract.
func TestClientAgainstServer(t *testing.T) {
	server := newTestServer(t)
	ctx := context.Background()
	c := client.New(server.URL, client.StaticToken("secret"), 5*time.Second)

	first, err := c.CreateChat(ctx, "First")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := c.CreateChat(ctx, "Second"); err != nil {
		t.Fatalf("create: %v", err)
	}
	reply, err := c.SendMessage(ctx, first.ID, "how do I count lines?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !strings.Contains(reply, "how do I count lines?") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if err := c.RenameChat(ctx, first.ID, "Counting"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	chats, err := c.ListChats(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chats) != 2 || chats[0].Name != "Second" || chats[1].Name != "Counting" || chats[1].MessageCount != 1 {
		t.Fatalf("unexpected chats: %#v", chats)
	}

	err = c.DeleteChat(ctx, "missing")
	if !client.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != string(CodeChatNotFound) {
		t.Fatalf("expected chat_not_found code, got %v", err)
	}

	anonymous := client.New(server.URL, client.StaticToken("wrong"), 5*time.Second)
	if _, err := anonymous.ListChats(ctx); !client.IsUnauthorized(err) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestDaemonRunStopsOnCancel(t *testing.T) {
	repo, err := store.NewFileRepository(filepath.Join(t.TempDir(), "chats.json"))
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	ready := make(chan string, 1)
	d := New("127.0.0.1:0", []string{"secret"}, "v", repo, WithReady(ready))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	var addr string
	select {
	case addr = <-ready:
	case err := <-done:
		t.Fatalf("Run exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("server never became ready")
	}

	c := client.New("http://"+addr, client.StaticToken("secret"), 2*time.Second)
	health, err := c.Health(context.Background())
	if err != nil || !health.OK || health.Version != "v" {
		t.Fatalf("health: %#v err=%v", health, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop")
	}
}

func TestDaemonRunRequiresToken(t *testing.T) {
	d := New("127.0.0.1:0", nil, "v", nil)
	if err := d.Run(context.Background()); err == nil {
		t.Fatalf("expected error without tokens")
	}
}

func TestWriteServiceErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, chatNotFound(errors.New("bucket u_1 missing key")))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "bucket") {
		t.Fatalf("cause leaked: %s", rec.Body.String())
	}
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Code != CodeChatNotFound || body.Error != "chat not found" {
		t.Fatalf("unexpected body: %#v", body)
	}

	rec = httptest.NewRecorder()
	writeServiceError(rec, errors.New("disk on fire"))
	if rec.Code != http.StatusInternalServerError || strings.Contains(rec.Body.String(), "disk") {
		t.Fatalf("unexpected internal error response: %d %s", rec.Code, rec.Body.String())
	}
}
