package tui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jasperwreed/ai-assistant/internal/models"
)

const (
	UserLabel      = "You:"
	AssistantLabel = "AI:"
)

type RenderOptions struct {
	// Markdown renders assistant turns through glamour.
	Markdown bool
}

// RenderMessage draws one chat turn at the given terminal width. User turns
// are right-aligned, assistant turns left-aligned. A width of zero or less
// disables wrapping.
func RenderMessage(role models.Role, content string, width int, opts RenderOptions) string {
	isUser := role == models.RoleUser

	label := assistantLabelStyle.Render(AssistantLabel)
	if isUser {
		label = userLabelStyle.Render(UserLabel)
	}

	bubble := bubbleWidth(width)
	body := content
	if !isUser && opts.Markdown {
		body = renderMarkdown(content, bubble)
	}

	block := label + "\n" + body
	if bubble <= 0 {
		return block
	}

	style := lipgloss.NewStyle().Width(bubble)
	if isUser {
		style = style.Align(lipgloss.Right)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, style.Render(block))
	}
	return style.Render(block)
}

// RenderTurn renders a transcript message, listing any tasks the backend
// extracted below the reply.
func RenderTurn(msg models.Message, width int, opts RenderOptions) string {
	content := msg.Content
	if len(msg.Tasks) > 0 {
		var b strings.Builder
		b.WriteString(content)
		b.WriteString("\n")
		for _, task := range msg.Tasks {
			b.WriteString("\n• ")
			b.WriteString(task)
		}
		content = b.String()
	}
	return RenderMessage(msg.Role, content, width, opts)
}

func bubbleWidth(width int) int {
	if width <= 0 {
		return 0
	}
	if width < 40 {
		return width
	}
	return width * 3 / 4
}

var (
	renderersMu sync.Mutex
	renderers   = map[int]*glamour.TermRenderer{}
)

// renderMarkdown falls back to the raw content when glamour cannot render it.
func renderMarkdown(content string, width int) string {
	renderersMu.Lock()
	r, ok := renderers[width]
	if !ok {
		opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
		if width > 0 {
			opts = append(opts, glamour.WithWordWrap(width))
		}
		var err error
		r, err = glamour.NewTermRenderer(opts...)
		if err != nil {
			r = nil
		}
		renderers[width] = r
	}
	renderersMu.Unlock()

	if r == nil {
		return content
	}
	out, err := r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
