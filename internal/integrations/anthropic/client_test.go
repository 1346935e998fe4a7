package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"science-helper/internal/domain"
)

func testRequest() domain.ChatRequest {
	return domain.ChatRequest{
		Model:       "claude-test",
		Temperature: 0.2,
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "You are a teacher."},
			{Role: domain.RoleUser, Content: `"Ice melts."`},
		},
	}
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient("sk-ant-test", WithBaseURL(srv.URL))
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("  ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "API key")
}

func TestComplete_HappyPath(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		require.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, json.Unmarshal(body, &got))
		require.Equal(t, "claude-test", got["model"])
		require.Equal(t, 0.2, got["temperature"])
		require.Contains(t, string(body), "You are a teacher.")
		require.Contains(t, string(body), `\"Ice melts.\"`)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"english\":\"Ice melts.\",\"direct_marathi\":\"a\",\"simple_marathi\":\"b\"}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 10}
		}`))
	}))
	defer srv.Close()

	out, err := newTestClient(t, srv).Complete(context.Background(), testRequest())
	require.NoError(t, err)
	require.Equal(t, `{"english":"Ice melts.","direct_marathi":"a","simple_marathi":"b"}`, out)
}

func TestComplete_SendsMaxTokens(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	c, err := NewClient("sk-ant-test", WithBaseURL(srv.URL), WithMaxTokens(256))
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	require.EqualValues(t, 256, got["max_tokens"])

	c, err = NewClient("sk-ant-test", WithBaseURL(srv.URL), WithMaxTokens(0))
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), testRequest())
	require.NoError(t, err)
	require.EqualValues(t, defaultMaxTokens, got["max_tokens"])
}

func TestComplete_RateLimitedCarriesStatus(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Complete(context.Background(), testRequest())
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusTooManyRequests, statusErr.HTTPStatusCode())
	require.Equal(t, 1, calls, "retries must stay disabled")
}

func TestComplete_NoTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-test","content":[],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":0}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv).Complete(context.Background(), testRequest())
	require.Error(t, err)
	require.Contains(t, err.Error(), "no text block")
}

func TestComplete_EmptyModel(t *testing.T) {
	c, err := NewClient("sk-ant-test")
	require.NoError(t, err)
	_, err = c.Complete(context.Background(), domain.ChatRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "model")
}

func TestToMessages_MapsRoles(t *testing.T) {
	out := toMessages([]domain.ChatMessage{
		{Role: domain.RoleUser, Content: "q"},
		{Role: domain.RoleAssistant, Content: "a"},
	})
	require.Len(t, out, 2)
	require.EqualValues(t, "user", out[0].Role)
	require.EqualValues(t, "assistant", out[1].Role)
}
