package chat

// QuickCommand is a canned input the UI can pre-fill. The controller sends it
// like any other text; the backend recognises the leading tag.
type QuickCommand struct {
	Label string
	Text  string
}

var quickCommands = []QuickCommand{
	{Label: "/resumen", Text: "/resumen"},
	{Label: "/tareas", Text: "/tareas\n- Comprar leche\n- Pagar la luz"},
	{Label: "/traducir", Text: "/traducir Hello, how are you?"},
	{Label: "/buscar", Text: "/buscar "},
}

func QuickCommands() []QuickCommand {
	out := make([]QuickCommand, len(quickCommands))
	copy(out, quickCommands)
	return out
}
