// Package backend is the HTTP client for the assistant backend. It maps each
// documented endpoint to one method and classifies failures into transport,
// status, decode and semantic errors.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jasperwreed/ai-assistant/internal/models"
)

const (
	DefaultBaseURL = "http://localhost:8000"

	// maxErrorBody caps how much of a failed response body is kept on Error.
	maxErrorBody = 512
)

type Config struct {
	BaseURL string
	// Timeout of zero means no timeout.
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{baseURL: baseURL, httpClient: httpClient}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// History returns the stored turns of a conversation. token is sent as-is.
func (c *Client) History(ctx context.Context, token string) ([]models.HistoryItem, error) {
	var items []models.HistoryItem
	if err := c.do(ctx, "history", http.MethodGet, "/history/"+url.PathEscape(token), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	var resp models.ChatResponse
	if err := c.do(ctx, "chat", http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetConversation deletes the conversation behind token. The response body
// is ignored.
func (c *Client) ResetConversation(ctx context.Context, token string) error {
	return c.do(ctx, "reset conversation", http.MethodDelete, "/conversation/reset/"+url.PathEscape(token), nil, nil)
}

func (c *Client) ListConversations(ctx context.Context) ([]models.AdminConversation, error) {
	var convs []models.AdminConversation
	if err := c.do(ctx, "list conversations", http.MethodGet, "/admin/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// GetConversation fetches one conversation. The backend answers a missing id
// with 200 and an error object, reported here as a semantic error.
func (c *Client) GetConversation(ctx context.Context, id int64) (*models.AdminConversation, error) {
	const op = "get conversation"
	var conv models.AdminConversation
	if err := c.do(ctx, op, http.MethodGet, "/admin/conversations/"+formatID(id), nil, &conv); err != nil {
		return nil, err
	}
	if conv.ID == 0 {
		return nil, &Error{Kind: KindSemantic, Op: op, Body: "conversation not found"}
	}
	return &conv, nil
}

func (c *Client) ListMessages(ctx context.Context, conversationID int64) ([]models.AdminMessage, error) {
	var msgs []models.AdminMessage
	if err := c.do(ctx, "list messages", http.MethodGet, "/admin/messages/"+formatID(conversationID), nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteConversation succeeds only when the body carries "deleted": true.
func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	return c.deleteFlagged(ctx, "delete conversation", "/admin/conversations/"+formatID(id), true)
}

// DeleteMessage succeeds only when the body carries "deleted": true.
func (c *Client) DeleteMessage(ctx context.Context, id int64) error {
	return c.deleteFlagged(ctx, "delete message", "/admin/messages/"+formatID(id), true)
}

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "list users", http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) CreateUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "create user", http.MethodPost, "/admin/users", models.UserInput{Username: username}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, username string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, "update user", http.MethodPut, "/admin/users/"+formatID(id), models.UserInput{Username: username}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser accepts any 2xx body, but an explicit "deleted": false is still
// a failure.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.deleteFlagged(ctx, "delete user", "/admin/users/"+formatID(id), false)
}

func (c *Client) deleteFlagged(ctx context.Context, op, path string, required bool) error {
	var result models.DeleteResult
	target := any(&result)
	if !required {
		target = &lenientJSON{into: &result}
	}
	if err := c.do(ctx, op, http.MethodDelete, path, nil, target); err != nil {
		return err
	}

	switch {
	case result.Deleted == nil && required:
		return &Error{Kind: KindSemantic, Op: op, Body: `response has no "deleted" flag`}
	case result.Deleted != nil && !*result.Deleted:
		return &Error{Kind: KindSemantic, Op: op, Body: `"deleted" is false`}
	}
	return nil
}

// lenientJSON decodes into `into` when the body is a JSON object and ignores
// anything else.
type lenientJSON struct {
	into any
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindUnknown, Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).Err(err).Msg("backend request failed")
		return &Error{Kind: KindTransport, Op: op, Err: err}
	}
	defer resp.Body.Close()

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("backend request")

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Kind: KindStatus, Op: op, Status: resp.StatusCode, Body: truncate(string(data))}
	}

	switch target := out.(type) {
	case nil:
		return nil
	case *lenientJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil
		}
		_ = json.Unmarshal(trimmed, target.into)
		return nil
	default:
		if err := json.Unmarshal(data, target); err != nil {
			return &Error{Kind: KindDecode, Op: op, Status: resp.StatusCode, Body: truncate(string(data)), Err: err}
		}
		return nil
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
