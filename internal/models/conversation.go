package models

// Role identifies who authored a chat turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of the chat transcript. It has no identity beyond its
// position in the transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	// Tasks is display-only; it is never sent back to the backend.
	Tasks []string `json:"-"`
}

// HistoryItem is an element of GET /history/{id}.
type HistoryItem struct {
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ChatRequest struct {
	Messages       []Message `json:"messages"`
	ConversationID *int64    `json:"conversation_id,omitempty"`
}

type ChatResponse struct {
	Response       string   `json:"response"`
	ConversationID *int64   `json:"conversation_id,omitempty"`
	Tasks          []string `json:"tasks,omitempty"`
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt Timestamp `json:"created_at"`
}

type UserInput struct {
	Username string `json:"username"`
}

// AdminConversation is a row of GET /admin/conversations.
type AdminConversation struct {
	ID        int64     `json:"id"`
	CreatedAt Timestamp `json:"created_at"`
}

// ConversationSummary is an AdminConversation enriched with a message count
// derived client-side.
type ConversationSummary struct {
	AdminConversation
	MessageCount int `json:"message_count"`
}

type AdminMessage struct {
	ID             int64  `json:"id"`
	ConversationID int64  `json:"conversation_id,omitempty"`
	Role           Role   `json:"role"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// DeleteResult is the body of the admin DELETE endpoints. Deleted is nil
// when the flag is missing.
type DeleteResult struct {
	Deleted *bool `json:"deleted"`
}
