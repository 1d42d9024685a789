package agent

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// MockClient answers completions offline by echoing the last user message.
// It is selected with LLM_USE_MOCK=1 for local runs without credentials.
type MockClient struct{}

// NewMockClient creates a mock chat client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// CreateChatCompletion implements chatClient.
func (m *MockClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	last := ""
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == openai.ChatMessageRoleUser {
			last = req.Messages[i].Content
			break
		}
	}
	return openai.ChatCompletionResponse{
		Model: req.Model,
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: fmt.Sprintf("(mock) You said: %q. Tell me more about what you find difficult.", last),
			}},
		},
	}, nil
}
