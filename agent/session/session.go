package session

import "time"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a session's conversation history.
type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at,omitempty"`
}

func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text, At: time.Now().UTC()}
}

func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text, At: time.Now().UTC()}
}

// Window returns the most recent n messages. With n <= 0 the full history is
// returned. The result is always a copy; callers may retain it across turns.
func Window(msgs []Message, n int) []Message {
	if n > 0 && len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}
