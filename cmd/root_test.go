package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"science-helper/internal/config"
	"science-helper/internal/integrations/anthropic"
	"science-helper/internal/integrations/gemini"
	"science-helper/internal/integrations/openai"
	"science-helper/internal/usecase"
)

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chapter.txt")
	require.NoError(t, os.WriteFile(path, []byte("Plants make food."), 0o600))

	got, err := readInput(strings.NewReader("from stdin"), "from flag", []string{path})
	require.NoError(t, err)
	require.Equal(t, "from flag", got)

	got, err = readInput(strings.NewReader("from stdin"), "", []string{path})
	require.NoError(t, err)
	require.Equal(t, "Plants make food.", got)

	got, err = readInput(strings.NewReader("from stdin"), "", nil)
	require.NoError(t, err)
	require.Equal(t, "from stdin", got)

	got, err = readInput(strings.NewReader("dash"), "", []string{"-"})
	require.NoError(t, err)
	require.Equal(t, "dash", got)

	_, err = readInput(strings.NewReader(""), "", []string{filepath.Join(dir, "missing.txt")})
	require.Error(t, err)
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"table", "markdown", "json", "yaml", " JSON "} {
		require.True(t, validFormat(f), f)
	}
	require.False(t, validFormat("csv"))
	require.False(t, validFormat(""))
}

func TestNewLLMClient_Providers(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{}
	cfg.LLM.Provider = config.ProviderOpenAI
	cfg.LLM.OpenAIAPIKey = "sk-test"
	cfg.LLM.ModerationEnabled = true
	llm, mod, err := newLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &openai.Client{}, llm)
	require.NotNil(t, mod)

	cfg.LLM.ModerationEnabled = false
	_, mod, err = newLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.Nil(t, mod)

	cfg = &config.Config{}
	cfg.LLM.Provider = config.ProviderAnthropic
	cfg.LLM.AnthropicAPIKey = "ak-test"
	llm, mod, err = newLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &anthropic.Client{}, llm)
	require.Nil(t, mod)

	cfg = &config.Config{}
	cfg.LLM.Provider = config.ProviderGemini
	cfg.LLM.GeminiAPIKey = "gk-test"
	llm, _, err = newLLMClient(ctx, cfg)
	require.NoError(t, err)
	require.IsType(t, &gemini.Client{}, llm)
}

func TestTimeoutProcessor_AppliesDeadline(t *testing.T) {
	var sawDeadline bool
	p := timeoutProcessor{
		next: processorFunc(func(ctx context.Context, _ string) (usecase.ProcessOutput, error) {
			_, sawDeadline = ctx.Deadline()
			return usecase.ProcessOutput{}, nil
		}),
		timeout: time.Second,
	}
	_, err := p.Process(context.Background(), "x")
	require.NoError(t, err)
	require.True(t, sawDeadline)
}

type processorFunc func(ctx context.Context, text string) (usecase.ProcessOutput, error)

func (f processorFunc) Process(ctx context.Context, text string) (usecase.ProcessOutput, error) {
	return f(ctx, text)
}

func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" || r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "unexpected request", http.StatusBadRequest)
			return
		}
		content, _ := json.Marshal(map[string]string{
			"english":        "Matter has mass.",
			"direct_marathi": "पदार्थाला वस्तुमान असते.",
			"simple_marathi": "प्रत्येक वस्तूला वजन असते.",
		})
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": string(content)}}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func setExplainEnv(t *testing.T, baseURL string) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", baseURL)
	t.Setenv("MODERATION_ENABLED", "false")
	t.Setenv("LOG_LEVEL", "error")
}

func TestExplainCommand_JSON(t *testing.T) {
	srv := fakeOpenAI(t)
	setExplainEnv(t, srv.URL)

	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetArgs([]string{"explain", "--text", "Matter has mass.", "--format", "json"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	var out usecase.ProcessOutput
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Equal(t, 1, out.SentenceCount)
	require.Len(t, out.Records, 1)
	require.Equal(t, "Matter has mass.", out.Records[0].English)
	require.Equal(t, "प्रत्येक वस्तूला वजन असते.", out.Records[0].SimpleExplanation)
	require.Empty(t, out.Failures)
}

func TestExplainCommand_MarkdownFromStdin(t *testing.T) {
	srv := fakeOpenAI(t)
	setExplainEnv(t, srv.URL)

	root := newRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetIn(strings.NewReader("Matter has mass."))
	root.SetArgs([]string{"explain", "--format", "markdown"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	got := stdout.String()
	require.Contains(t, got, "| English Sentence | Direct Marathi Meaning | Simple Marathi Meaning |")
	require.Contains(t, got, "1 of 1 sentences explained.")
}

func TestExplainCommand_UnknownFormat(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"explain", "--text", "x", "--format", "csv"})
	err := root.ExecuteContext(context.Background())
	require.ErrorContains(t, err, `unknown format "csv"`)
}
