package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/fslsm-tutor/internal/domain"
	openai "github.com/sashabaranov/go-openai"
)

var (
	errNoChoices  = errors.New("completion returned no choices")
	errNilClient  = errors.New("chat client is nil")
	errEmptyModel = errors.New("model name is empty")
)

// Gateway calls an OpenAI-compatible chat completion endpoint.
type Gateway struct {
	client   chatClient
	cfg      Config
	logger   *slog.Logger
	observer CompletionObserver
}

// NewOpenAIClient builds a client for cfg.BaseURL authenticated with cfg.APIKey.
func NewOpenAIClient(cfg Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// NewGateway wraps client with the completion parameters in cfg.
func NewGateway(client chatClient, cfg Config, logger *slog.Logger, observer CompletionObserver) (*Gateway, error) {
	if client == nil {
		return nil, errNilClient
	}
	if strings.TrimSpace(cfg.ModelName) == "" {
		return nil, errEmptyModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client:   client,
		cfg:      cfg,
		logger:   logger,
		observer: observer,
	}, nil
}

// Complete requests exactly one reply and returns its trimmed content. Any
// failure is returned as an ErrorMarker-prefixed reply instead of an error.
//
// The call is detached from ctx cancellation: once issued, it runs until the
// endpoint answers or the transport gives up.
func (g *Gateway) Complete(ctx context.Context, messages []domain.Turn) string {
	start := time.Now()
	reply, err := g.complete(context.WithoutCancel(ctx), messages)
	elapsed := time.Since(start)

	if g.observer != nil {
		g.observer.ObserveCompletion(elapsed, err == nil)
	}
	if err != nil {
		g.logger.Error("Completion failed",
			"model", g.cfg.ModelName,
			"messages", len(messages),
			"duration", elapsed,
			"error", err,
		)
		return ErrorReply(err)
	}

	g.logger.Debug("Completion succeeded",
		"model", g.cfg.ModelName,
		"messages", len(messages),
		"duration", elapsed,
		"reply_length", len(reply),
	)
	return reply
}

func (g *Gateway) complete(ctx context.Context, messages []domain.Turn) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       g.cfg.ModelName,
		Messages:    toOpenAIMessages(messages),
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
		N:           1,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func toOpenAIMessages(turns []domain.Turn) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(turns))
	for _, t := range turns {
		out = append(out, openai.ChatCompletionMessage{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}
	return out
}

// ErrorReply formats err as a visible assistant message.
func ErrorReply(err error) string {
	return ErrorMarker + " " + err.Error()
}

// IsErrorReply reports whether reply was produced by a failed completion.
func IsErrorReply(reply string) bool {
	return strings.HasPrefix(reply, ErrorMarker)
}
