package admin

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/jasperwreed/ai-assistant/internal/audit"
	"github.com/jasperwreed/ai-assistant/internal/models"
)

const (
	MsgLoadConversationsFailed  = "Error loading conversations"
	MsgLoadMessagesFailed       = "Error loading messages"
	MsgDeleteConversationFailed = "Could not delete conversation"
	MsgDeleteMessageFailed      = "Could not delete message"
)

const (
	noticeConversationDeleted = "Conversation deleted"
	noticeMessageDeleted      = "Message deleted"
)

type ConversationBackend interface {
	ListConversations(ctx context.Context) ([]models.AdminConversation, error)
	ListMessages(ctx context.Context, conversationID int64) ([]models.AdminMessage, error)
	DeleteConversation(ctx context.Context, id int64) error
	DeleteMessage(ctx context.Context, id int64) error
}

// ConversationAdmin lists conversations with their message counts and lets
// an operator inspect and delete conversations and single messages.
type ConversationAdmin struct {
	backend ConversationBackend
	users   *UserAdmin
	opts    options

	mu            sync.Mutex
	conversations []models.ConversationSummary
	loading       bool
	// loadSeq and selectSeq identify the latest list load and selection;
	// responses carrying an older value are discarded.
	loadSeq         uint64
	selectSeq       uint64
	selected        int64
	hasSelection    bool
	messages        []models.AdminMessage
	loadingMessages bool
	errMsg          string
	notice          notice
}

func NewConversationAdmin(backend ConversationBackend, users *UserAdmin, opts ...Option) *ConversationAdmin {
	return &ConversationAdmin{
		backend: backend,
		users:   users,
		opts:    buildOptions(DefaultConversationNoticeTTL, opts),
	}
}

// Users returns the user controller shown next to the conversation list.
func (a *ConversationAdmin) Users() *UserAdmin {
	return a.users
}

// Load fetches the conversation list and then, concurrently, each
// conversation's messages to derive its count. A failed count fetch counts as
// zero. The list is published only after every count has settled.
func (a *ConversationAdmin) Load(ctx context.Context) error {
	a.mu.Lock()
	a.loadSeq++
	seq := a.loadSeq
	a.loading = true
	a.errMsg = ""
	a.mu.Unlock()

	convs, err := a.backend.ListConversations(ctx)
	if err != nil {
		a.mu.Lock()
		defer a.mu.Unlock()
		if seq == a.loadSeq {
			a.loading = false
			a.errMsg = MsgLoadConversationsFailed
		}
		return fmt.Errorf("failed to load conversations: %w", err)
	}

	summaries := make([]models.ConversationSummary, len(convs))
	var g errgroup.Group
	g.SetLimit(a.opts.concurrency)
	for i, conv := range convs {
		summaries[i].AdminConversation = conv
		g.Go(func() error {
			msgs, err := a.backend.ListMessages(ctx, conv.ID)
			if err != nil {
				log.Debug().Err(err).Int64("conversation_id", conv.ID).Msg("message count fetch failed, counting zero")
				return nil
			}
			summaries[i].MessageCount = len(msgs)
			return nil
		})
	}
	_ = g.Wait()

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.loadSeq {
		return nil
	}
	a.loading = false
	a.conversations = summaries
	return nil
}

// Reload is the manual refresh trigger.
func (a *ConversationAdmin) Reload(ctx context.Context) error {
	return a.Load(ctx)
}

// Select makes id the selected conversation and fetches its messages. If
// another selection starts before the fetch returns, the older result is
// dropped.
func (a *ConversationAdmin) Select(ctx context.Context, id int64) error {
	a.mu.Lock()
	a.selected, a.hasSelection = id, true
	a.messages = nil
	a.errMsg = ""
	a.mu.Unlock()

	return a.fetchMessages(ctx, id)
}

func (a *ConversationAdmin) fetchMessages(ctx context.Context, id int64) error {
	a.mu.Lock()
	a.selectSeq++
	seq := a.selectSeq
	a.loadingMessages = true
	a.mu.Unlock()

	msgs, err := a.backend.ListMessages(ctx, id)

	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != a.selectSeq {
		log.Debug().Int64("conversation_id", id).Msg("dropping stale message fetch")
		return nil
	}
	a.loadingMessages = false
	if err != nil {
		a.errMsg = MsgLoadMessagesFailed
		return fmt.Errorf("failed to load messages for conversation %d: %w", id, err)
	}
	a.messages = msgs
	return nil
}

// DeleteConversation removes a conversation and its messages once confirm
// approves. Only an explicit deletion flag from the backend counts as
// success; anything else leaves state untouched apart from the error line.
func (a *ConversationAdmin) DeleteConversation(ctx context.Context, id int64, confirm Confirmer) error {
	if !confirm.Confirm(fmt.Sprintf("Delete conversation #%d and all its messages?", id)) {
		return ErrNotConfirmed
	}

	err := a.backend.DeleteConversation(ctx, id)
	a.opts.record(audit.ActionConversationDelete, id, "", err)
	if err != nil {
		a.fail(MsgDeleteConversationFailed)
		return fmt.Errorf("failed to delete conversation %d: %w", id, err)
	}

	a.mu.Lock()
	if a.hasSelection && a.selected == id {
		a.selected, a.hasSelection = 0, false
		a.messages = nil
		a.loadingMessages = false
		// Invalidate any fetch still in flight for the deleted conversation.
		a.selectSeq++
	}
	a.notice.set(noticeConversationDeleted, a.opts.noticeTTL, a.opts.now())
	a.mu.Unlock()

	if err := a.Load(ctx); err != nil {
		log.Debug().Err(err).Msg("conversation reload after delete failed")
	}
	return nil
}

// DeleteMessage removes one message once confirm approves and refreshes the
// selected conversation.
func (a *ConversationAdmin) DeleteMessage(ctx context.Context, id int64, confirm Confirmer) error {
	if !confirm.Confirm(fmt.Sprintf("Delete message #%d?", id)) {
		return ErrNotConfirmed
	}

	err := a.backend.DeleteMessage(ctx, id)
	a.opts.record(audit.ActionMessageDelete, id, "", err)
	if err != nil {
		a.fail(MsgDeleteMessageFailed)
		return fmt.Errorf("failed to delete message %d: %w", id, err)
	}

	a.mu.Lock()
	a.notice.set(noticeMessageDeleted, a.opts.noticeTTL, a.opts.now())
	selected, ok := a.selected, a.hasSelection
	a.mu.Unlock()

	if ok {
		if err := a.fetchMessages(ctx, selected); err != nil {
			log.Debug().Err(err).Msg("message refresh after delete failed")
		}
	}
	return nil
}

func (a *ConversationAdmin) Conversations() []models.ConversationSummary {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.ConversationSummary, len(a.conversations))
	copy(out, a.conversations)
	return out
}

// Selected returns the selected conversation id.
func (a *ConversationAdmin) Selected() (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected, a.hasSelection
}

// Messages returns the messages of the selected conversation.
func (a *ConversationAdmin) Messages() []models.AdminMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.AdminMessage, len(a.messages))
	copy(out, a.messages)
	return out
}

func (a *ConversationAdmin) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *ConversationAdmin) LoadingMessages() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadingMessages
}

func (a *ConversationAdmin) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

func (a *ConversationAdmin) Notice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice.at(a.opts.now())
}

func (a *ConversationAdmin) fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errMsg = msg
}
