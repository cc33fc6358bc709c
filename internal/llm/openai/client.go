// Package openai talks to the OpenAI chat completions API through go-openai.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kitbuilder587/newsquery/internal/llm"
)

type Config struct {
	APIKey string
	// BaseURL overrides the default https://api.openai.com/v1 (proxies, Azure gateways, tests).
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	client *goopenai.Client
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 60 * time.Second
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		client: goopenai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	if req.Model == "" {
		return "", llm.ErrNoModel
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// classify keeps the original error in the chain next to the llm sentinel.
func (c *Client) classify(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", llm.ErrAuthFailed, err)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", llm.ErrRateLimit, err)
		}
		c.logger.Error("openai request failed",
			zap.Int("status", apiErr.HTTPStatusCode),
			zap.String("type", apiErr.Type),
			zap.String("message", apiErr.Message),
		)
		return fmt.Errorf("%w: %w", llm.ErrRequestFailed, err)
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %w", llm.ErrRequestFailed, err)
}

var _ llm.Client = (*Client)(nil)
