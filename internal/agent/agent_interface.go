package agent

import (
	"context"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

// Completer produces the assistant's next reply for a message sequence.
// Implementations never return an error: failures come back as reply text
// starting with ErrorMarker.
type Completer interface {
	Complete(ctx context.Context, messages []domain.Turn) string
}

// chatClient is the subset of the OpenAI client the gateway needs.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Ensure Gateway implements Completer.
var _ Completer = (*Gateway)(nil)

// Ensure the real and mock clients satisfy chatClient.
var (
	_ chatClient = (*openai.Client)(nil)
	_ chatClient = (*MockClient)(nil)
)
