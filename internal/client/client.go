package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"termchat/internal/types"
)

const (
	defaultBaseURL = "http://127.0.0.1:7788"
	defaultTimeout = 15 * time.Second
	chatsPath      = "/api/chats"
	chatPath       = "/api/chat"
	shutdownPath   = "/api/shutdown"
)

// TokenSource yields the bearer token for the current user. An empty token
// means nobody is signed in.
type TokenSource interface {
	Token() string
}

type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Client struct {
	baseURL string
	tokens  TokenSource
	http    *resty.Client
}

func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		http:    httpClient,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, false, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListChats(ctx context.Context) ([]types.Chat, error) {
	var chats []types.Chat
	if err := c.doJSON(ctx, http.MethodGet, chatsPath, nil, true, &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

func (c *Client) CreateChat(ctx context.Context, name string) (types.Chat, error) {
	var chat types.Chat
	if err := c.doJSON(ctx, http.MethodPost, chatsPath, CreateChatRequest{Name: name}, true, &chat); err != nil {
		return types.Chat{}, err
	}
	if strings.TrimSpace(chat.ID) == "" {
		return types.Chat{}, errors.New("create chat: response is missing an id")
	}
	return chat, nil
}

func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.doJSON(ctx, http.MethodDelete, chatsPath, DeleteChatRequest{ChatID: chatID}, true, nil)
}

func (c *Client) RenameChat(ctx context.Context, chatID, newName string) error {
	return c.doJSON(ctx, http.MethodPatch, chatsPath, RenameChatRequest{ChatID: chatID, NewName: newName}, true, nil)
}

func (c *Client) SendMessage(ctx context.Context, chatID, message string) (string, error) {
	var resp SendMessageResponse
	if err := c.doJSON(ctx, http.MethodPost, chatPath, SendMessageRequest{ChatID: chatID, Message: message}, true, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// Shutdown asks the development server to stop.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, shutdownPath, nil, true, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, requireAuth bool, out any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if requireAuth {
		token := strings.TrimSpace(c.tokens.Token())
		if token == "" {
			return ErrNotSignedIn
		}
		req.SetAuthToken(token)
	}
	if out != nil {
		req.SetResult(out)
	}
	var payload errorPayload
	req.SetError(&payload)

	resp, err := req.Execute(method, path)
	if err != nil {
		if resp != nil && resp.StatusCode() >= 400 {
			return decodeAPIError(resp, payload)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return decodeAPIError(resp, payload)
	}
	return nil
}

var ErrNotSignedIn = errors.New("not signed in")

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func decodeAPIError(resp *resty.Response, payload errorPayload) error {
	apiErr := &APIError{StatusCode: resp.StatusCode(), Code: payload.Code, Message: resp.Status()}
	if msg := strings.TrimSpace(payload.Error); msg != "" {
		apiErr.Message = msg
	}
	return apiErr
}

// APIError is a non-2xx answer. Code is the server's reason, empty when the
// body carried none.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("api error (%d): %s", e.StatusCode, e.Message)
}

func asAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsUnauthorized reports whether err means the server rejected the token or
// no token was available.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNotSignedIn) {
		return true
	}
	apiErr := asAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	apiErr := asAPIError(err)
	return apiErr != nil && apiErr.StatusCode == http.StatusNotFound
}

// EnsureServer checks the development server and starts it in the
// background when it is not answering.
func (c *Client) EnsureServer(ctx context.Context) error {
	if resp, err := c.Health(ctx); err == nil && resp.OK {
		return nil
	}
	if err := StartBackgroundServer(); err != nil {
		return err
	}
	deadline := time.Now().Add(4 * time.Second)
	var lastErr error
	for time.Now().Before(deadline) {
		resp, err := c.Health(ctx)
		if err == nil && resp.OK {
			return nil
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(150 * time.Millisecond):
		}
	}
	if lastErr == nil {
		lastErr = errors.New("server not healthy after start")
	}
	return lastErr
}
