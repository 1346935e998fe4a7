// Package gemini adapts the Gemini generateContent API to the chat request
// shape used by the usecase.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"science-helper/internal/domain"
)

// StatusError carries the HTTP status of a failed generateContent call.
type StatusError struct {
	StatusCode int
	Err        error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: status %d: %v", e.StatusCode, e.Err)
}

func (e *StatusError) Unwrap() error { return e.Err }

func (e *StatusError) HTTPStatusCode() int { return e.StatusCode }

type Client struct {
	client *genai.Client
}

// NewClient creates a Gemini API client. baseURL may be empty.
func NewClient(ctx context.Context, apiKey, baseURL string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: API key must not be empty")
	}
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Complete(ctx context.Context, in domain.ChatRequest) (string, error) {
	if in.Model == "" {
		return "", errors.New("gemini: model must not be empty")
	}

	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](float32(in.Temperature)),
		ResponseMIMEType: "application/json",
		ResponseSchema:   explanationSchema(),
	}
	if sys := in.SystemPrompt(); sys != "" {
		cfg.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, in.Model, toContents(in.Conversation()), cfg)
	if err != nil {
		if code, ok := apiErrorCode(err); ok {
			return "", &StatusError{StatusCode: code, Err: err}
		}
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

func explanationSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"english":        str,
			"direct_marathi": str,
			"simple_marathi": str,
		},
		Required:         []string{"english", "direct_marathi", "simple_marathi"},
		PropertyOrdering: []string{"english", "direct_marathi", "simple_marathi"},
	}
}

func toContents(msgs []domain.ChatMessage) []*genai.Content {
	out := make([]*genai.Content, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == domain.RoleAssistant {
			out = append(out, genai.NewContentFromText(m.Content, genai.RoleModel))
			continue
		}
		out = append(out, genai.NewContentFromText(m.Content, genai.RoleUser))
	}
	return out
}

func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
