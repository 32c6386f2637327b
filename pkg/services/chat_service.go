package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/samber/lo"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
	"github.com/dskvich/chatgpt-websocket-bot/pkg/openai"
)

type OpenAIClient interface {
	CreateChatCompletionStream(ctx context.Context, chat *domain.Chat) (openai.CompletionStream, error)
}

type AttachmentRepository interface {
	Take(sessionID string) (domain.Attachment, bool)
}

// FragmentWriter delivers one streamed response fragment to the client.
type FragmentWriter func(fragment string) error

const defaultImageInstruction = "Analyze this image and respond to my prompt."

type chatService struct {
	openAIClient   OpenAIClient
	attachmentRepo AttachmentRepository
	model          string
	systemPrompt   string
}

func NewChatService(
	openAIClient OpenAIClient,
	attachmentRepo AttachmentRepository,
	model string,
	systemPrompt string,
) *chatService {
	model, _ = lo.Coalesce(model, domain.Gpt4oMiniModel)
	systemPrompt, _ = lo.Coalesce(systemPrompt, domain.DefaultSystemPrompt)

	return &chatService{
		openAIClient:   openAIClient,
		attachmentRepo: attachmentRepo,
		model:          model,
		systemPrompt:   systemPrompt,
	}
}

// NewChat creates the per-connection conversation, seeded with the system
// directive as its first message.
func (c *chatService) NewChat(sessionID string) *domain.Chat {
	return &domain.Chat{
		SessionID: sessionID,
		Model:     c.model,
		Messages: []domain.ChatMessage{
			{Role: domain.ChatMessageRoleSystem, Content: c.systemPrompt},
		},
	}
}

// ProcessTurn runs one request/response exchange: it consumes any pending
// attachment for the session, appends the composed user message, streams the
// completion forwarding each fragment through write as it arrives, and
// commits the accumulated response to the chat when non-empty.
//
// A turn with no text and no pending attachment is a no-op: the chat is not
// mutated and upstream is not contacted.
//
// consumePending controls whether the session's pending attachment is
// consulted; turns degraded from malformed payloads pass false and leave the
// store untouched.
func (c *chatService) ProcessTurn(ctx context.Context, chat *domain.Chat, text string, consumePending bool, write FragmentWriter) error {
	var attachment domain.Attachment
	var hasAttachment bool
	if consumePending {
		attachment, hasAttachment = c.attachmentRepo.Take(chat.SessionID)
	}

	content := buildUserContent(text, attachment, hasAttachment)
	if content == nil {
		slog.DebugContext(ctx, "Skipping empty turn", "sessionID", chat.SessionID)
		return nil
	}

	chat.AddMessage(domain.ChatMessage{Role: domain.ChatMessageRoleUser, Content: content})

	slog.InfoContext(ctx, "Calling OpenAI for chat completion",
		"model", chat.Model,
		"messagesCount", len(chat.Messages),
		"hasAttachment", hasAttachment,
	)

	stream, err := c.openAIClient.CreateChatCompletionStream(ctx, chat)
	if err != nil {
		return fmt.Errorf("creating chat completion stream: %w", err)
	}
	defer stream.Close()

	var response strings.Builder
	for {
		fragment, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("receiving stream fragment: %w", err)
		}

		if err := write(fragment); err != nil {
			return fmt.Errorf("forwarding stream fragment: %w", err)
		}
		response.WriteString(fragment)
	}

	if response.Len() > 0 {
		chat.AddMessage(domain.ChatMessage{
			Role:    domain.ChatMessageRoleAssistant,
			Content: response.String(),
		})
	}

	slog.DebugContext(ctx, "Turn complete", "responseLength", response.Len())

	return nil
}

func buildUserContent(text string, attachment domain.Attachment, hasAttachment bool) any {
	switch {
	case hasAttachment && attachment.Kind == domain.AttachmentKindImage:
		prompt, _ := lo.Coalesce(text, defaultImageInstruction)
		return []domain.Content{
			{Type: domain.ContentTypeText, Text: prompt},
			{Type: domain.ContentTypeImageURL, ImageURL: &domain.ImageURL{URL: attachment.Content}},
		}
	case hasAttachment:
		return []domain.Content{
			{Type: domain.ContentTypeText, Text: attachment.Content + "\n\nUser prompt: " + text},
		}
	case text != "":
		return []domain.Content{
			{Type: domain.ContentTypeText, Text: text},
		}
	default:
		return nil
	}
}
