package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"

	"github.com/jasperwreed/ai-assistant/internal/models"
)

func TestRenderMessage_Labels(t *testing.T) {
	user := RenderMessage(models.RoleUser, "Hola", 0, RenderOptions{})
	assert.Equal(t, "You:\nHola", user)

	ai := RenderMessage(models.RoleAssistant, "¿Qué tal?", 0, RenderOptions{})
	assert.Equal(t, "AI:\n¿Qué tal?", ai)
}

func TestRenderMessage_Alignment(t *testing.T) {
	const width = 60

	user := RenderMessage(models.RoleUser, "Hola", width, RenderOptions{})
	for _, line := range strings.Split(user, "\n") {
		assert.Equal(t, width, len([]rune(line)))
		assert.True(t, strings.HasPrefix(line, " "), "user turns hug the right edge: %q", line)
	}
	assert.True(t, strings.HasSuffix(strings.Split(user, "\n")[1], "Hola"))

	ai := RenderMessage(models.RoleAssistant, "Hola", width, RenderOptions{})
	lines := strings.Split(ai, "\n")
	assert.True(t, strings.HasPrefix(lines[0], "AI:"))
	assert.True(t, strings.HasPrefix(lines[1], "Hola"))
}

func TestRenderMessage_Wraps(t *testing.T) {
	long := strings.Repeat("palabra ", 20)
	out := RenderMessage(models.RoleAssistant, long, 40, RenderOptions{})

	lines := strings.Split(out, "\n")
	assert.Greater(t, len(lines), 3)
	for _, line := range lines {
		assert.LessOrEqual(t, len([]rune(line)), 30)
	}
}

func TestRenderTurn_Tasks(t *testing.T) {
	msg := models.Message{
		Role:    models.RoleAssistant,
		Content: "He generado una lista de tareas para ti.",
		Tasks:   []string{"Comprar leche", "Pagar la luz"},
	}
	out := RenderTurn(msg, 0, RenderOptions{})

	assert.Contains(t, out, "• Comprar leche")
	assert.Contains(t, out, "• Pagar la luz")
	assert.True(t, strings.HasPrefix(out, "AI:\nHe generado"))
}

func TestRenderTurn_NoTasks(t *testing.T) {
	msg := models.Message{Role: models.RoleUser, Content: "hi"}
	assert.Equal(t, RenderMessage(models.RoleUser, "hi", 0, RenderOptions{}), RenderTurn(msg, 0, RenderOptions{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcd…", Truncate("abcdefgh", 5))
	assert.Equal(t, "ñandú", Truncate("ñandú", 5))
}

func TestTruncate_WideRunes(t *testing.T) {
	assert.Equal(t, "日本語…", Truncate("日本語テキスト", 7))
	assert.Equal(t, "日本語", Truncate("日本語", 6))

	for _, s := range []string{"用户名非常长的名字", "🎉🎉🎉🎉🎉 party"} {
		assert.LessOrEqual(t, runewidth.StringWidth(Truncate(s, 8)), 8, s)
	}
}
