package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/jasperwreed/ai-assistant/internal/chat"
)

type chatInitializedMsg struct{ err error }

type chatRepliedMsg struct{ err error }

type chatResetMsg struct{ err error }

type chatModel struct {
	ctx  context.Context
	ctrl *chat.Controller
	opts RenderOptions

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model

	width    int
	height   int
	revision uint64
	status   string
	// sending counts sends dispatched but not yet answered; the spinner
	// ticks while it is positive.
	sending int
}

func newChatModel(ctx context.Context, ctrl *chat.Controller, opts RenderOptions) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Type a message..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(3)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = assistantLabelStyle

	return chatModel{
		ctx:      ctx,
		ctrl:     ctrl,
		opts:     opts,
		input:    ta,
		viewport: vp,
		spinner:  sp,
	}
}

func (m chatModel) Init() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(textarea.Blink, func() tea.Msg {
		return chatInitializedMsg{err: ctrl.Initialize(ctx)}
	})
}

func (m *chatModel) setSize(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.input.SetWidth(width)
	m.viewport.Width = width
	m.viewport.Height = max(height-m.input.Height()-2, 1)
	m.revision = 0
	m.refresh()
}

func (m chatModel) Update(msg tea.Msg) (chatModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case chatInitializedMsg:
		if msg.err != nil {
			m.status = "Could not read the saved session"
			log.Warn().Err(msg.err).Msg("chat initialize failed")
		}

	case chatRepliedMsg:
		m.sending--
		if msg.err != nil {
			log.Debug().Err(msg.err).Msg("chat send failed")
		}

	case chatResetMsg:
		m.status = "Conversation reset"
		if msg.err != nil {
			m.status = "Conversation reset, but the saved session could not be cleared"
			log.Warn().Err(msg.err).Msg("chat reset failed")
		}

	case spinner.TickMsg:
		if m.sending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := m.input.Value()
			if strings.TrimSpace(text) == "" {
				break
			}
			m.input.Reset()
			m.status = ""
			m.sending++
			cmds = append(cmds, m.send(text), m.spinner.Tick)
			m.refresh()
			return m, tea.Batch(cmds...)

		case "ctrl+r":
			ctx, ctrl := m.ctx, m.ctrl
			cmds = append(cmds, func() tea.Msg {
				return chatResetMsg{err: ctrl.Reset(ctx)}
			})

		case "f1", "f2", "f3", "f4":
			quick := chat.QuickCommands()
			if i := int(msg.String()[1] - '1'); i < len(quick) {
				m.input.SetValue(quick[i].Text)
				m.input.CursorEnd()
			}
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	return m, tea.Batch(cmds...)
}

func (m chatModel) send(text string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		err := ctrl.Send(ctx, text)
		if errors.Is(err, chat.ErrEmptyMessage) {
			err = nil
		}
		return chatRepliedMsg{err: err}
	}
}

// refresh redraws the transcript when it changed and scrolls to the newest
// turn.
func (m *chatModel) refresh() {
	rev := m.ctrl.Revision()
	if rev == m.revision {
		return
	}
	m.revision = rev

	var b strings.Builder
	for i, turn := range m.ctrl.Transcript() {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(RenderTurn(turn, m.width, m.opts))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m chatModel) View() string {
	var status string
	switch {
	case m.sending > 0:
		status = m.spinner.View() + subtleStyle.Render(" waiting for the assistant...")
	case m.status != "":
		status = subtleStyle.Render(m.status)
	}

	return m.viewport.View() + "\n" + status + "\n" + m.input.View()
}

func chatHelp() string {
	var labels []string
	for i, q := range chat.QuickCommands() {
		labels = append(labels, "f"+string(rune('1'+i))+": "+q.Label)
	}
	return "enter: send • alt+enter: newline • ctrl+r: reset • " + strings.Join(labels, " • ")
}
