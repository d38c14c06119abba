// Package admin implements the user and conversation management surface.
//
// Controllers keep the state a view renders (lists, selection, the current
// error line and a transient notice) and translate backend failures into
// fixed user-facing messages. All methods are safe for concurrent use.
package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jasperwreed/ai-assistant/internal/audit"
	"github.com/jasperwreed/ai-assistant/internal/models"
)

const (
	DefaultUserNoticeTTL         = 1500 * time.Millisecond
	DefaultConversationNoticeTTL = 2 * time.Second
	DefaultConcurrency           = 8
)

// User-facing error lines.
const (
	MsgLoadUsersFailed  = "Error loading users"
	MsgCreateUserFailed = "Could not create user (name must be unique)"
	MsgUpdateUserFailed = "Could not update user (name must be unique)"
	MsgDeleteUserFailed = "Error deleting user"
)

const (
	noticeUserCreated = "User created"
	noticeUserUpdated = "User updated"
	noticeUserDeleted = "User deleted"
)

var (
	ErrEmptyUsername = errors.New("admin: username is empty")
	ErrNotConfirmed  = errors.New("admin: action not confirmed")
)

// Confirmer asks the operator to approve an irreversible action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed approves every prompt. Views that ask for confirmation themselves
// pass it once the operator has answered.
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

type UserBackend interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type UserAdmin struct {
	backend UserBackend
	opts    options

	mu       sync.Mutex
	users    []models.User
	loading  bool
	errMsg   string
	notice   notice
	editing  int64
	isEdit   bool
	username string
}

func NewUserAdmin(backend UserBackend, opts ...Option) *UserAdmin {
	return &UserAdmin{
		backend: backend,
		opts:    buildOptions(DefaultUserNoticeTTL, opts),
	}
}

// Load replaces the user list. On failure the previous list is kept and the
// error line is set.
func (a *UserAdmin) Load(ctx context.Context) error {
	a.mu.Lock()
	a.loading = true
	a.errMsg = ""
	a.mu.Unlock()

	users, err := a.backend.ListUsers(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = false
	if err != nil {
		a.errMsg = MsgLoadUsersFailed
		return fmt.Errorf("failed to load users: %w", err)
	}
	a.users = users
	return nil
}

// Create adds a user. A blank name is rejected before any request is made.
func (a *UserAdmin) Create(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}

	_, err := a.backend.CreateUser(ctx, username)
	a.opts.record(audit.ActionUserCreate, 0, username, err)
	if err != nil {
		a.fail(MsgCreateUserFailed)
		return fmt.Errorf("failed to create user: %w", err)
	}

	a.mu.Lock()
	if !a.isEdit {
		a.username = ""
	}
	a.mu.Unlock()
	a.succeed(ctx, noticeUserCreated)
	return nil
}

// Update renames a user. Blank names are rejected like Create.
func (a *UserAdmin) Update(ctx context.Context, id int64, username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrEmptyUsername
	}

	_, err := a.backend.UpdateUser(ctx, id, username)
	a.opts.record(audit.ActionUserUpdate, id, username, err)
	if err != nil {
		a.fail(MsgUpdateUserFailed)
		return fmt.Errorf("failed to update user %d: %w", id, err)
	}

	a.mu.Lock()
	if a.isEdit && a.editing == id {
		a.isEdit, a.editing, a.username = false, 0, ""
	}
	a.mu.Unlock()
	a.succeed(ctx, noticeUserUpdated)
	return nil
}

// Delete removes a user once confirm approves. Declining sends nothing.
func (a *UserAdmin) Delete(ctx context.Context, id int64, confirm Confirmer) error {
	if !confirm.Confirm(fmt.Sprintf("Delete user #%d?", id)) {
		return ErrNotConfirmed
	}

	err := a.backend.DeleteUser(ctx, id)
	a.opts.record(audit.ActionUserDelete, id, "", err)
	if err != nil {
		a.fail(MsgDeleteUserFailed)
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}

	a.mu.Lock()
	if a.isEdit && a.editing == id {
		a.isEdit, a.editing, a.username = false, 0, ""
	}
	a.mu.Unlock()
	a.succeed(ctx, noticeUserDeleted)
	return nil
}

// StartEdit switches the form into edit mode for user, replacing any edit
// already in progress.
func (a *UserAdmin) StartEdit(user models.User) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.isEdit, a.editing, a.username = true, user.ID, user.Username
}

func (a *UserAdmin) CancelEdit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.isEdit, a.editing, a.username = false, 0, ""
}

// Editing returns the id of the user being edited.
func (a *UserAdmin) Editing() (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editing, a.isEdit
}

func (a *UserAdmin) Username() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.username
}

func (a *UserAdmin) SetUsername(username string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.username = username
}

// Submit saves the form: an update while editing, a create otherwise.
func (a *UserAdmin) Submit(ctx context.Context) error {
	a.mu.Lock()
	id, isEdit, username := a.editing, a.isEdit, a.username
	a.mu.Unlock()

	if isEdit {
		return a.Update(ctx, id, username)
	}
	return a.Create(ctx, username)
}

func (a *UserAdmin) Users() []models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.User, len(a.users))
	copy(out, a.users)
	return out
}

func (a *UserAdmin) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// Err returns the current error line, or "".
func (a *UserAdmin) Err() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

// Notice returns the success notice while it is still live.
func (a *UserAdmin) Notice() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.notice.at(a.opts.now())
}

func (a *UserAdmin) fail(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errMsg = msg
}

func (a *UserAdmin) succeed(ctx context.Context, text string) {
	a.mu.Lock()
	a.notice.set(text, a.opts.noticeTTL, a.opts.now())
	a.mu.Unlock()

	if err := a.Load(ctx); err != nil {
		log.Debug().Err(err).Msg("user reload after mutation failed")
	}
}
