// Package tui is the terminal front end: a chat screen and an admin screen
// under one bubbletea program.
package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jasperwreed/ai-assistant/internal/admin"
	"github.com/jasperwreed/ai-assistant/internal/chat"
)

type appMode int

const (
	modeChat appMode = iota
	modeAdmin
)

const (
	welcomeTitle = "AI Assistant"
	welcomeText  = "Working prototype of a smart assistant. Ask questions or request tasks and I'll help!"
)

type Config struct {
	Render RenderOptions
	// StartInAdmin opens the admin screen first.
	StartInAdmin bool
	// Origin is shown in the header.
	Origin        string
	UserNoticeTTL time.Duration
	ConvNoticeTTL time.Duration
}

// App hosts the chat and admin screens.
type App struct {
	chat  *chat.Controller
	convs *admin.ConversationAdmin
	cfg   Config
}

func NewApp(chatCtrl *chat.Controller, convs *admin.ConversationAdmin, cfg Config) *App {
	if cfg.UserNoticeTTL <= 0 {
		cfg.UserNoticeTTL = admin.DefaultUserNoticeTTL
	}
	if cfg.ConvNoticeTTL <= 0 {
		cfg.ConvNoticeTTL = admin.DefaultConversationNoticeTTL
	}
	return &App{chat: chatCtrl, convs: convs, cfg: cfg}
}

func (a *App) Run(ctx context.Context) error {
	p := tea.NewProgram(a.model(ctx), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func (a *App) model(ctx context.Context) appModel {
	m := appModel{
		mode:   modeChat,
		chat:   newChatModel(ctx, a.chat, a.cfg.Render),
		admin:  newAdminModel(ctx, a.convs, a.cfg.UserNoticeTTL, a.cfg.ConvNoticeTTL),
		ctrl:   a.chat,
		origin: a.cfg.Origin,
	}
	if a.cfg.StartInAdmin {
		m.mode = modeAdmin
		m.admin.loaded = true
	}
	return m
}

type appModel struct {
	mode   appMode
	chat   chatModel
	admin  adminModel
	ctrl   *chat.Controller
	origin string

	width  int
	height int
	ready  bool
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.chat.Init()}
	if m.mode == modeAdmin {
		cmds = append(cmds, m.admin.loadCmd())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab", "ctrl+a":
			if m.admin.typing || m.admin.confirm != nil {
				break
			}
			return m.toggle()
		case "q":
			if m.mode == modeAdmin && !m.admin.typing && m.admin.confirm == nil {
				return m, tea.Quit
			}
		}

		if m.mode == modeAdmin {
			m.admin, cmd = m.admin.Update(msg)
		} else {
			m.chat, cmd = m.chat.Update(msg)
			m.layout()
		}
		return m, cmd

	case adminDoneMsg, noticeExpiredMsg:
		m.admin, cmd = m.admin.Update(msg)
		return m, cmd
	}

	m.chat, cmd = m.chat.Update(msg)
	m.layout()
	return m, cmd
}

func (m appModel) toggle() (tea.Model, tea.Cmd) {
	if m.mode == modeAdmin {
		m.mode = modeChat
		m.layout()
		return m, nil
	}

	m.mode = modeAdmin
	if !m.admin.loaded {
		return m, m.admin.load()
	}
	return m, nil
}

// layout hands the panes whatever the header and footer leave over. The
// welcome banner only takes room while it is visible.
func (m *appModel) layout() {
	if !m.ready {
		return
	}
	body := m.height - lipgloss.Height(m.header()) - 1
	if m.mode == modeChat && m.ctrl.WelcomeVisible() {
		body -= lipgloss.Height(m.welcome())
	}
	m.chat.setSize(m.width, max(body, 3))
	m.admin.setSize(m.width, max(m.height-lipgloss.Height(m.header())-1, 3))
}

func (m appModel) header() string {
	title := "Chat"
	if m.mode == modeAdmin {
		title = "Admin panel"
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		titleStyle.Render(welcomeTitle+" · "+title),
		subtleStyle.Render("  "+m.origin),
	)
}

func (m appModel) welcome() string {
	return lipgloss.NewStyle().
		Width(m.width).
		Align(lipgloss.Center).
		Render(titleStyle.Render(welcomeTitle) + "\n" + subtleStyle.Render(welcomeText) + "\n")
}

func (m appModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	var body, help string
	switch m.mode {
	case modeAdmin:
		body = m.admin.View()
		help = "tab: back to chat • " + adminHelp() + " • q: quit"
	default:
		body = m.chat.View()
		if m.ctrl.WelcomeVisible() {
			body = m.welcome() + "\n" + body
		}
		help = "tab: admin • " + chatHelp() + " • ctrl+c: quit"
	}

	return m.header() + "\n" + body + "\n" + helpStyle.Render(Truncate(help, m.width))
}
