package main

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"science-helper/internal/config"
	"science-helper/internal/integrations/anthropic"
	"science-helper/internal/integrations/gemini"
	"science-helper/internal/integrations/openai"
	"science-helper/internal/integrations/paramstore"
	"science-helper/internal/usecase"
)

// newService wires config -> LLM client -> explain service.
func newService(ctx context.Context, cfg *config.Config, log *slog.Logger) (*usecase.ExplainService, error) {
	llm, moderator, err := newLLMClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	temperature := cfg.LLM.Temperature
	svc, err := usecase.NewExplainService(llm, usecase.Options{
		Model:          cfg.LLM.Model(),
		Temperature:    &temperature,
		RequestTimeout: cfg.LLM.RequestTimeout,
		Concurrency:    cfg.LLM.Concurrency,
		MaxTextLength:  cfg.Limits.MaxTextLength,
		MaxSentences:   cfg.Limits.MaxSentences,
		Moderator:      moderator,
		Logger:         log,
	})
	if err != nil {
		return nil, fmt.Errorf("create explain service: %w", err)
	}

	log.Info("explain service ready",
		"provider", cfg.LLM.Provider,
		"model", cfg.LLM.Model(),
		"concurrency", cfg.LLM.Concurrency,
		"moderation", moderator != nil,
	)
	return svc, nil
}

// newLLMClient returns the client for the configured provider. The moderator
// is nil unless moderation is enabled, which config validation only allows
// for openai.
func newLLMClient(ctx context.Context, cfg *config.Config) (usecase.LLMClient, usecase.Moderator, error) {
	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithRequestTimeout(cfg.LLM.RequestTimeout),
			anthropic.WithMaxTokens(cfg.LLM.AnthropicMaxTokens),
		}
		if cfg.LLM.AnthropicBaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.LLM.AnthropicBaseURL))
		}
		c, err := anthropic.NewClient(cfg.LLM.AnthropicAPIKey, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create anthropic client: %w", err)
		}
		return c, nil, nil

	case config.ProviderGemini:
		c, err := gemini.NewClient(ctx, cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiBaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create gemini client: %w", err)
		}
		return c, nil, nil

	default:
		keys, err := openAIKeySource(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		c, err := openai.NewClient(keys, openai.WithBaseURL(cfg.LLM.OpenAIBaseURL))
		if err != nil {
			return nil, nil, fmt.Errorf("create OpenAI client: %w", err)
		}
		if cfg.LLM.ModerationEnabled {
			return c, c, nil
		}
		return c, nil, nil
	}
}

// openAIKeySource prefers OPENAI_API_KEY and falls back to the SSM token
// under PARAM_PREFIX.
func openAIKeySource(ctx context.Context, cfg *config.Config) (openai.KeySource, error) {
	if cfg.LLM.OpenAIAPIKey != "" {
		return openai.StaticKey(cfg.LLM.OpenAIAPIKey), nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
	if err != nil {
		return nil, fmt.Errorf("create SSM client: %w", err)
	}
	tokens, err := paramstore.NewTokenSource(ssmClient, cfg.AWS.ParamPrefix)
	if err != nil {
		return nil, fmt.Errorf("create token source: %w", err)
	}
	return tokens, nil
}
