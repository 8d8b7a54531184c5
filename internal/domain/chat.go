package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single conversation turn as exchanged with the caller.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CloneHistory returns a copy of history with room for the turns appended by
// a successful exchange. The caller's slice is never written to.
func CloneHistory(history []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(history), len(history)+2)
	copy(out, history)
	return out
}
