package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/dskvich/chatgpt-websocket-bot/pkg/domain"
)

// CompletionStream is a cancellable sequence of response text fragments.
// Recv returns io.EOF when the upstream stream ends.
type CompletionStream interface {
	Recv() (string, error)
	Close() error
}

type client struct {
	api *openai.Client
}

func NewClient(token string) (*client, error) {
	if token == "" {
		return nil, fmt.Errorf("token is empty")
	}
	return &client{api: openai.NewClient(token)}, nil
}

// CreateChatCompletionStream starts a streaming completion over the chat's
// entire accumulated message history.
func (c *client) CreateChatCompletionStream(ctx context.Context, chat *domain.Chat) (CompletionStream, error) {
	req := openai.ChatCompletionRequest{
		Model:    chat.Model,
		Messages: toAPIMessages(chat.Messages),
		Stream:   true,
	}

	stream, err := c.api.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("creating chat completion stream: %w", err)
	}
	return &completionStream{stream: stream}, nil
}

type completionStream struct {
	stream *openai.ChatCompletionStream
}

func (s *completionStream) Recv() (string, error) {
	for {
		resp, err := s.stream.Recv()
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			continue
		}
		if content := resp.Choices[0].Delta.Content; content != "" {
			return content, nil
		}
	}
}

func (s *completionStream) Close() error {
	s.stream.Close()
	return nil
}

func toAPIMessages(messages []domain.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		switch content := m.Content.(type) {
		case []domain.Content:
			parts := make([]openai.ChatMessagePart, 0, len(content))
			for _, part := range content {
				switch part.Type {
				case domain.ContentTypeImageURL:
					parts = append(parts, openai.ChatMessagePart{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: part.ImageURL.URL},
					})
				default:
					parts = append(parts, openai.ChatMessagePart{
						Type: openai.ChatMessagePartTypeText,
						Text: part.Text,
					})
				}
			}
			out = append(out, openai.ChatCompletionMessage{Role: m.Role, MultiContent: parts})
		case string:
			out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: content})
		default:
			out = append(out, openai.ChatCompletionMessage{Role: m.Role, Content: fmt.Sprint(m.Content)})
		}
	}
	return out
}
