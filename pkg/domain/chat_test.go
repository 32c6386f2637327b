package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat_AddMessageCapsHistory(t *testing.T) {
	chat := &Chat{Messages: []ChatMessage{{Role: ChatMessageRoleSystem, Content: "directive"}}}

	for i := 0; i < MaxChatMessages*2; i++ {
		role := ChatMessageRoleUser
		if i%2 == 1 {
			role = ChatMessageRoleAssistant
		}
		chat.AddMessage(ChatMessage{Role: role, Content: fmt.Sprintf("msg-%d", i)})
	}

	require.Len(t, chat.Messages, MaxChatMessages)
	assert.Equal(t, ChatMessageRoleSystem, chat.Messages[0].Role, "system directive stays first")
	assert.Equal(t, fmt.Sprintf("msg-%d", MaxChatMessages*2-1), chat.Messages[len(chat.Messages)-1].Content)
}

func TestChat_AddMessageBelowCap(t *testing.T) {
	chat := &Chat{Messages: []ChatMessage{{Role: ChatMessageRoleSystem, Content: "directive"}}}

	chat.AddMessage(ChatMessage{Role: ChatMessageRoleUser, Content: "hi"})
	chat.AddMessage(ChatMessage{Role: ChatMessageRoleAssistant, Content: "hello"})

	assert.Len(t, chat.Messages, 3)
}
