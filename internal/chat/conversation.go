package chat

import (
	"sync"

	"github.com/jbruckner/talktome/internal/model"
)

// Conversation is the append-only message log of one session. Each entry
// carries both the transcript view (model context) and the display view
// (UI history), so the two are index-aligned by construction.
type Conversation struct {
	mu   sync.RWMutex
	msgs []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds one message to the log.
func (c *Conversation) Append(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
}

// AppendMany adds messages in order as one atomic step.
func (c *Conversation) AppendMany(msgs []Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msgs...)
}

// Len returns the number of committed messages.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.msgs)
}

// Transcript returns the model-facing view: role and plain text per message,
// in insertion order.
func (c *Conversation) Transcript() []model.TurnMessage {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.TurnMessage, len(c.msgs))
	for i, m := range c.msgs {
		out[i] = model.TurnMessage{Role: m.Role, Content: m.Transcript}
	}
	return out
}

// Messages returns a copy of the display history in insertion order.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}
