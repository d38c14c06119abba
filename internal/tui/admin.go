package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog/log"

	"github.com/jasperwreed/ai-assistant/internal/admin"
)

type adminPane int

const (
	paneUsers adminPane = iota
	paneConversations
	paneMessages
	paneCount
)

// adminDoneMsg reports that a controller call finished. expireAfter, when
// positive, asks for a redraw once the notice it set has lapsed.
type adminDoneMsg struct {
	op          string
	err         error
	expireAfter time.Duration
}

type noticeExpiredMsg struct{}

// pendingConfirm is a destructive action waiting for y/n.
type pendingConfirm struct {
	prompt string
	run    tea.Cmd
}

type adminModel struct {
	ctx   context.Context
	convs *admin.ConversationAdmin
	users *admin.UserAdmin

	userTTL time.Duration
	convTTL time.Duration

	focus   adminPane
	cursors [paneCount]int
	form    textinput.Model
	typing  bool
	confirm *pendingConfirm
	loaded  bool

	width  int
	height int
}

func newAdminModel(ctx context.Context, convs *admin.ConversationAdmin, userTTL, convTTL time.Duration) adminModel {
	form := textinput.New()
	form.Placeholder = "username"
	form.CharLimit = 64
	form.Prompt = "name: "

	return adminModel{
		ctx:     ctx,
		convs:   convs,
		users:   convs.Users(),
		userTTL: userTTL,
		convTTL: convTTL,
		form:    form,
		focus:   paneConversations,
	}
}

// load marks the screen as loaded and fetches users and conversations side
// by side.
func (m *adminModel) load() tea.Cmd {
	m.loaded = true
	return m.loadCmd()
}

func (m adminModel) loadCmd() tea.Cmd {
	ctx, users, convs := m.ctx, m.users, m.convs
	return tea.Batch(
		func() tea.Msg { return adminDoneMsg{op: "load users", err: users.Load(ctx)} },
		func() tea.Msg { return adminDoneMsg{op: "load conversations", err: convs.Reload(ctx)} },
	)
}

func (m *adminModel) setSize(width, height int) {
	m.width, m.height = width, height
	m.form.Width = max(width/3-12, 10)
}

func (m adminModel) Update(msg tea.Msg) (adminModel, tea.Cmd) {
	switch msg := msg.(type) {
	case adminDoneMsg:
		if msg.err != nil && !errors.Is(msg.err, admin.ErrNotConfirmed) {
			log.Debug().Err(msg.err).Str("op", msg.op).Msg("admin action failed")
		}
		m.clampCursors()
		if msg.err == nil && msg.expireAfter > 0 {
			return m, tea.Tick(msg.expireAfter, func(time.Time) tea.Msg { return noticeExpiredMsg{} })
		}
		return m, nil

	case noticeExpiredMsg:
		return m, nil

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		if m.typing {
			return m.updateForm(msg)
		}
		return m.updateNav(msg)
	}
	return m, nil
}

func (m adminModel) updateConfirm(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		run := m.confirm.run
		m.confirm = nil
		return m, run
	case "n", "N", "esc":
		m.confirm = nil
	}
	return m, nil
}

func (m adminModel) updateForm(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.typing = false
		m.form.Blur()
		m.form.SetValue("")
		m.users.CancelEdit()
		return m, nil

	case "enter":
		m.users.SetUsername(m.form.Value())
		if strings.TrimSpace(m.form.Value()) == "" {
			return m, nil
		}
		m.typing = false
		m.form.Blur()
		m.form.SetValue("")
		ctx, users, ttl := m.ctx, m.users, m.userTTL
		return m, func() tea.Msg {
			return adminDoneMsg{op: "save user", err: users.Submit(ctx), expireAfter: ttl}
		}
	}

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

func (m adminModel) updateNav(msg tea.KeyMsg) (adminModel, tea.Cmd) {
	ctx := m.ctx

	switch msg.String() {
	case "left", "h":
		m.focus = (m.focus + paneCount - 1) % paneCount
	case "right", "l":
		m.focus = (m.focus + 1) % paneCount
	case "up", "k":
		if m.cursors[m.focus] > 0 {
			m.cursors[m.focus]--
		}
	case "down", "j":
		if m.cursors[m.focus] < m.paneLen(m.focus)-1 {
			m.cursors[m.focus]++
		}

	case "r":
		return m, m.load()

	case "n":
		m.users.CancelEdit()
		m.typing = true
		m.form.SetValue("")
		m.focus = paneUsers
		return m, m.form.Focus()

	case "e":
		users := m.users.Users()
		if m.focus != paneUsers || m.cursors[paneUsers] >= len(users) {
			return m, nil
		}
		user := users[m.cursors[paneUsers]]
		m.users.StartEdit(user)
		m.typing = true
		m.form.SetValue(user.Username)
		m.form.CursorEnd()
		return m, m.form.Focus()

	case "enter":
		convs := m.convs.Conversations()
		if m.focus != paneConversations || m.cursors[paneConversations] >= len(convs) {
			return m, nil
		}
		id := convs[m.cursors[paneConversations]].ID
		m.cursors[paneMessages] = 0
		return m, func() tea.Msg {
			return adminDoneMsg{op: "select conversation", err: m.convs.Select(ctx, id)}
		}

	case "d", "delete":
		m.confirm = m.deleteUnderCursor()
	}
	return m, nil
}

func (m adminModel) deleteUnderCursor() *pendingConfirm {
	ctx, users, convs := m.ctx, m.users, m.convs
	cursor := m.cursors[m.focus]

	switch m.focus {
	case paneUsers:
		list := users.Users()
		if cursor >= len(list) {
			return nil
		}
		id, ttl := list[cursor].ID, m.userTTL
		return &pendingConfirm{
			prompt: fmt.Sprintf("Delete user #%d?", id),
			run: func() tea.Msg {
				return adminDoneMsg{op: "delete user", err: users.Delete(ctx, id, admin.Confirmed), expireAfter: ttl}
			},
		}
	case paneConversations:
		list := convs.Conversations()
		if cursor >= len(list) {
			return nil
		}
		id, ttl := list[cursor].ID, m.convTTL
		return &pendingConfirm{
			prompt: fmt.Sprintf("Delete conversation #%d and all its messages?", id),
			run: func() tea.Msg {
				return adminDoneMsg{op: "delete conversation", err: convs.DeleteConversation(ctx, id, admin.Confirmed), expireAfter: ttl}
			},
		}
	case paneMessages:
		list := convs.Messages()
		if cursor >= len(list) {
			return nil
		}
		id, ttl := list[cursor].ID, m.convTTL
		return &pendingConfirm{
			prompt: fmt.Sprintf("Delete message #%d?", id),
			run: func() tea.Msg {
				return adminDoneMsg{op: "delete message", err: convs.DeleteMessage(ctx, id, admin.Confirmed), expireAfter: ttl}
			},
		}
	}
	return nil
}

func (m adminModel) paneLen(p adminPane) int {
	switch p {
	case paneUsers:
		return len(m.users.Users())
	case paneConversations:
		return len(m.convs.Conversations())
	default:
		return len(m.convs.Messages())
	}
}

func (m *adminModel) clampCursors() {
	for p := adminPane(0); p < paneCount; p++ {
		if n := m.paneLen(p); m.cursors[p] >= n {
			m.cursors[p] = max(n-1, 0)
		}
	}
}

func (m adminModel) View() string {
	colWidth := max(m.width/3-2, 20)
	height := max(m.height-4, 5)

	panes := []string{
		m.renderPane(paneUsers, "Users", m.userLines(colWidth), colWidth, height),
		m.renderPane(paneConversations, "Conversations", m.conversationLines(colWidth), colWidth, height),
		m.renderPane(paneMessages, "Messages", m.messageLines(colWidth), colWidth, height),
	}

	var status []string
	for _, line := range []struct {
		text  string
		style lipgloss.Style
	}{
		{m.users.Err(), errorStyle},
		{m.convs.Err(), errorStyle},
		{m.users.Notice(), noticeStyle},
		{m.convs.Notice(), noticeStyle},
	} {
		if line.text != "" {
			status = append(status, line.style.Render(line.text))
		}
	}
	if m.confirm != nil {
		status = append(status, errorStyle.Render(m.confirm.prompt+" [y/N]"))
	}

	return strings.Join(status, "  ") + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m adminModel) renderPane(p adminPane, title string, lines []string, width, height int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if p == paneUsers && m.typing {
		label := "New user"
		if _, editing := m.users.Editing(); editing {
			label = "Edit user"
		}
		b.WriteString(subtleStyle.Render(label) + "\n" + m.form.View() + "\n")
	}

	// Keep the cursor row on screen.
	visible := max(height-4, 1)
	start := 0
	if c := m.cursors[p]; c >= visible {
		start = c - visible + 1
	}
	for i := start; i < len(lines) && i < start+visible; i++ {
		style := itemStyle
		if i == m.cursors[p] && m.focus == p {
			style = selectedItemStyle
		}
		b.WriteString(style.Render(lines[i]))
		b.WriteString("\n")
	}

	style := paneStyle
	if m.focus == p {
		style = focusedPaneStyle
	}
	return style.Width(width).Height(height).Render(b.String())
}

func (m adminModel) userLines(width int) []string {
	if m.users.Loading() {
		return []string{subtleStyle.Render("Loading...")}
	}
	users := m.users.Users()
	if len(users) == 0 {
		return []string{subtleStyle.Render("No users")}
	}
	lines := make([]string, len(users))
	for i, u := range users {
		lines[i] = Truncate(fmt.Sprintf("#%d %s  %s", u.ID, u.Username, u.CreatedAt.Display()), width-4)
	}
	return lines
}

func (m adminModel) conversationLines(width int) []string {
	if m.convs.Loading() {
		return []string{subtleStyle.Render("Loading...")}
	}
	convs := m.convs.Conversations()
	if len(convs) == 0 {
		return []string{subtleStyle.Render("No conversations")}
	}
	selected, hasSelection := m.convs.Selected()
	lines := make([]string, len(convs))
	for i, c := range convs {
		marker := " "
		if hasSelection && c.ID == selected {
			marker = "*"
		}
		lines[i] = Truncate(fmt.Sprintf("%s#%d %s (%d messages)", marker, c.ID, c.CreatedAt.Display(), c.MessageCount), width-4)
	}
	return lines
}

func (m adminModel) messageLines(width int) []string {
	if _, ok := m.convs.Selected(); !ok {
		return []string{subtleStyle.Render("Select a conversation")}
	}
	if m.convs.LoadingMessages() {
		return []string{subtleStyle.Render("Loading...")}
	}
	msgs := m.convs.Messages()
	if len(msgs) == 0 {
		return []string{subtleStyle.Render("No messages")}
	}
	lines := make([]string, len(msgs))
	for i, msg := range msgs {
		content := strings.ReplaceAll(msg.Content, "\n", " ")
		lines[i] = Truncate(fmt.Sprintf("%s: %s", msg.Role, content), width-4)
	}
	return lines
}

func adminHelp() string {
	return "←/→: pane • ↑/↓: move • enter: open • n: new user • e: edit • d: delete • r: reload"
}

// Truncate shortens s to width terminal cells, marking the cut with an
// ellipsis.
func Truncate(s string, width int) string {
	if width <= 1 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
