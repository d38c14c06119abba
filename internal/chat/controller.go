// Package chat owns the chat transcript and the lifecycle of the active
// conversation id.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jasperwreed/ai-assistant/internal/models"
	"github.com/jasperwreed/ai-assistant/internal/session"
)

const (
	DefaultGreeting    = "Hello! I'm your AI assistant. How can I help you today?"
	DefaultErrorNotice = "Connection error with the backend."

	// PlaceholderConversationID is adopted when the backend accepts the first
	// message of a session without returning an id.
	PlaceholderConversationID = "1"
)

var ErrEmptyMessage = errors.New("chat: message is empty")

// Backend is the subset of the backend client the controller needs.
type Backend interface {
	History(ctx context.Context, token string) ([]models.HistoryItem, error)
	Chat(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error)
	ResetConversation(ctx context.Context, token string) error
}

type Option func(*Controller)

func WithGreeting(greeting string) Option {
	return func(c *Controller) {
		if greeting != "" {
			c.greeting = greeting
		}
	}
}

func WithErrorNotice(notice string) Option {
	return func(c *Controller) {
		if notice != "" {
			c.errorNotice = notice
		}
	}
}

// Controller is safe for concurrent use. Send and Reset may be issued from
// separate goroutines; network calls are made without holding the lock.
type Controller struct {
	backend     Backend
	store       session.Store
	greeting    string
	errorNotice string

	mu          sync.Mutex
	transcript  []models.Message
	welcome     bool
	token       string
	hasToken    bool
	initialized bool
	pending     int
	// revision changes on every transcript mutation.
	revision uint64
	// epoch changes on every Reset; replies from an older epoch are dropped.
	epoch uint64
}

func NewController(backend Backend, store session.Store, opts ...Option) *Controller {
	c := &Controller{
		backend:     backend,
		store:       store,
		greeting:    DefaultGreeting,
		errorNotice: DefaultErrorNotice,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.seed()
	return c
}

// seed installs the single greeting turn. Callers hold mu.
func (c *Controller) seed() {
	c.transcript = []models.Message{{Role: models.RoleAssistant, Content: c.greeting}}
	c.welcome = true
	c.revision++
}

// Initialize restores the stored conversation. It only does work on the first
// call. History failures are ignored and leave the greeting in place; only a
// failure to read the session store is returned.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.initialized {
		c.mu.Unlock()
		return nil
	}
	c.initialized = true
	epoch := c.epoch
	c.mu.Unlock()

	token, ok, err := c.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}
	if !ok {
		return nil
	}

	c.mu.Lock()
	// A reset or an adopted id while the store was read wins over the
	// stored token.
	if c.epoch != epoch || c.hasToken {
		c.mu.Unlock()
		return nil
	}
	c.token, c.hasToken = token, true
	revision := c.revision
	c.mu.Unlock()

	history, err := c.backend.History(ctx, token)
	if err != nil {
		log.Debug().Err(err).Str("conversation_id", token).Msg("history fetch failed, keeping greeting")
		return nil
	}
	if len(history) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A send or reset that happened while history was in flight wins.
	if c.revision != revision || c.epoch != epoch {
		return nil
	}
	transcript := make([]models.Message, 0, len(history))
	for _, item := range history {
		transcript = append(transcript, models.Message{Role: item.Role, Content: item.Content})
	}
	c.transcript = transcript
	c.welcome = false
	c.revision++
	return nil
}

// Send appends text as a user turn right away, then posts the transcript.
// On failure the user turn stays and an assistant turn carrying the error
// notice is appended; the error is still returned for logging.
func (c *Controller) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	c.transcript = append(c.transcript, models.Message{Role: models.RoleUser, Content: text})
	c.revision++
	c.pending++
	req := models.ChatRequest{Messages: wireMessages(c.transcript)}
	sentWithID := false
	if c.hasToken {
		if id, ok := coerceID(c.token); ok {
			req.ConversationID = &id
			sentWithID = true
		} else {
			log.Warn().Str("conversation_id", c.token).Msg("stored conversation id is not numeric, sending without it")
		}
	}
	epoch := c.epoch
	c.mu.Unlock()

	resp, err := c.backend.Chat(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending--

	if c.epoch != epoch {
		log.Debug().Msg("dropping chat reply that arrived after a reset")
		return err
	}

	if err != nil {
		c.transcript = append(c.transcript, models.Message{Role: models.RoleAssistant, Content: c.errorNotice})
		c.revision++
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.adoptID(ctx, resp.ConversationID, sentWithID)
	c.transcript = append(c.transcript, models.Message{
		Role:    models.RoleAssistant,
		Content: resp.Response,
		Tasks:   resp.Tasks,
	})
	c.welcome = false
	c.revision++
	return nil
}

// adoptID applies the id carried by a chat response. Callers hold mu.
//
// A request sent without an id only assigns one if none is active yet, so
// the first reply of a new session decides its id. A request that carried an
// id adopts whatever the backend answers, since the backend re-creates
// conversations it no longer knows. A stored token that cannot be sent is
// replaced too.
func (c *Controller) adoptID(ctx context.Context, id *int64, sentWithID bool) {
	_, numeric := coerceID(c.token)
	replaceable := sentWithID || !c.hasToken || !numeric

	var next string
	switch {
	case id != nil && *id != 0 && replaceable:
		next = strconv.FormatInt(*id, 10)
	case !c.hasToken:
		// TODO: confirm with the backend owners whether /chat may omit
		// conversation_id; until then new sessions park on the placeholder.
		log.Warn().Msg("chat response carried no conversation id, using placeholder")
		next = PlaceholderConversationID
	default:
		return
	}

	if c.hasToken && c.token == next {
		return
	}
	c.token, c.hasToken = next, true
	if err := c.store.Set(ctx, next); err != nil {
		log.Warn().Err(err).Str("conversation_id", next).Msg("failed to persist conversation id")
	}
}

// Reset asks the backend to drop the active conversation, ignoring the
// outcome, then restores the greeting and forgets the id.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	token, hasToken := c.token, c.hasToken
	c.mu.Unlock()

	if hasToken {
		if err := c.backend.ResetConversation(ctx, token); err != nil {
			log.Debug().Err(err).Str("conversation_id", token).Msg("backend reset failed, clearing locally")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seed()
	c.token, c.hasToken = "", false
	c.epoch++

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Transcript returns a copy of the current transcript.
func (c *Controller) Transcript() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

func (c *Controller) WelcomeVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.welcome
}

// ConversationID returns the active conversation token, if any.
func (c *Controller) ConversationID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.hasToken
}

// Pending reports whether a Send is waiting for the backend.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending > 0
}

// Revision changes whenever the transcript changes.
func (c *Controller) Revision() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.revision
}

func wireMessages(transcript []models.Message) []models.Message {
	out := make([]models.Message, len(transcript))
	for i, m := range transcript {
		out[i] = models.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func coerceID(token string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
