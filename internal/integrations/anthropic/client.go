// Package anthropic adapts the Anthropic Messages API to the chat request
// shape used by the usecase.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"science-helper/internal/domain"
)

const defaultMaxTokens = 1024

// StatusError carries the HTTP status of a failed Messages call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("anthropic: status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

type Client struct {
	api       sdk.Client
	maxTokens int64
}

type Option func(*settings)

type settings struct {
	baseURL   string
	timeout   time.Duration
	maxTokens int64
}

func WithBaseURL(baseURL string) Option {
	return func(s *settings) { s.baseURL = strings.TrimSpace(baseURL) }
}

func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) { s.timeout = d }
}

func WithMaxTokens(n int64) Option {
	return func(s *settings) { s.maxTokens = n }
}

// NewClient builds a client with SDK retries turned off; a failed sentence
// is reported, not retried.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic: API key must not be empty")
	}
	s := settings{maxTokens: defaultMaxTokens}
	for _, opt := range opts {
		opt(&s)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if s.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(s.baseURL))
	}
	if s.timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(s.timeout))
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultMaxTokens
	}

	return &Client{api: sdk.NewClient(reqOpts...), maxTokens: s.maxTokens}, nil
}

func (c *Client) Complete(ctx context.Context, in domain.ChatRequest) (string, error) {
	if in.Model == "" {
		return "", errors.New("anthropic: model must not be empty")
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(in.Model),
		MaxTokens:   c.maxTokens,
		Temperature: sdk.Float(in.Temperature),
		Messages:    toMessages(in.Conversation()),
	}
	if sys := in.SystemPrompt(); sys != "" {
		params.System = []sdk.TextBlockParam{{Text: sys}}
	}

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		var apiErr *sdk.Error
		if errors.As(err, &apiErr) {
			return "", &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return "", fmt.Errorf("anthropic: messages call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic: no text block in response")
}

func toMessages(msgs []domain.ChatMessage) []sdk.MessageParam {
	out := make([]sdk.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		block := sdk.NewTextBlock(m.Content)
		if m.Role == domain.RoleAssistant {
			out = append(out, sdk.NewAssistantMessage(block))
			continue
		}
		out = append(out, sdk.NewUserMessage(block))
	}
	return out
}
