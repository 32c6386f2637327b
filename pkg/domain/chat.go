package domain

type Chat struct {
	SessionID string
	Model     string
	Messages  []ChatMessage
}

// MaxChatMessages caps the conversation history. When the limit is exceeded
// the oldest non-system messages are dropped so the system directive stays
// the first entry.
const MaxChatMessages = 50

func (c *Chat) AddMessage(msg ChatMessage) {
	c.Messages = append(c.Messages, msg)

	if len(c.Messages) <= MaxChatMessages {
		return
	}

	overflow := len(c.Messages) - MaxChatMessages
	if c.Messages[0].Role == ChatMessageRoleSystem {
		c.Messages = append(c.Messages[:1], c.Messages[1+overflow:]...)
	} else {
		c.Messages = c.Messages[overflow:]
	}
}
