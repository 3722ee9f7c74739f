package model

import "github.com/google/uuid"

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one utterance in a chat session.
type Turn struct {
	Role Role
	Text string
}

// Exchange is a completed question/answer pair used to ground a follow-up
// question.
type Exchange struct {
	User      string
	Assistant string
}

// Conversation is the ordered turn log of a single chat session. It lives
// only in memory and is discarded when the session ends. It is not safe for
// concurrent use; a session sends one question at a time.
type Conversation struct {
	turns []Turn
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Append records a turn at the end of the log.
func (c *Conversation) Append(role Role, text string) {
	c.turns = append(c.turns, Turn{Role: role, Text: text})
}

// History returns a copy of all turns in order.
func (c *Conversation) History() []Turn {
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Paired scans completed turns two at a time and returns user/assistant
// exchanges. A trailing turn without a matching answer is excluded, so the
// in-flight question never grounds itself.
func (c *Conversation) Paired() []Exchange {
	var pairs []Exchange
	for i := 0; i+1 < len(c.turns); i += 2 {
		if c.turns[i].Role == RoleUser && c.turns[i+1].Role == RoleAssistant {
			pairs = append(pairs, Exchange{
				User:      c.turns[i].Text,
				Assistant: c.turns[i+1].Text,
			})
		}
	}
	return pairs
}

// Len returns the number of recorded turns.
func (c *Conversation) Len() int {
	return len(c.turns)
}
