package store

import "time"

// Turn is one utterance in a conversation.
type Turn struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Session represents the active conversation state in memory.
// Turns are ordered oldest first; the store trims them FIFO.
type Session struct {
	ID         string    `json:"id"`
	Turns      []Turn    `json:"turns"`
	CreatedAt  time.Time `json:"created_at"`
	LastAccess time.Time `json:"last_access"`
}

// TurnPairs counts completed (user, assistant) pairs.
func (s *Session) TurnPairs() int {
	return len(s.Turns) / 2
}
