package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the loaded values and normalizes the provider name.
func (c *Config) Validate() error {
	var errs []error

	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if strings.TrimSpace(c.LLM.OpenAIAPIKey) == "" && strings.TrimSpace(c.AWS.ParamPrefix) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY or PARAM_PREFIX is required for provider openai"))
		}
	case ProviderAnthropic:
		if strings.TrimSpace(c.LLM.AnthropicAPIKey) == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required for provider anthropic"))
		}
		if c.LLM.AnthropicMaxTokens <= 0 {
			errs = append(errs, fmt.Errorf("anthropic max tokens %d must be positive", c.LLM.AnthropicMaxTokens))
		}
		if c.LLM.ModerationEnabled {
			errs = append(errs, errors.New("moderation is only available with provider openai"))
		}
	case ProviderGemini:
		if strings.TrimSpace(c.LLM.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for provider gemini"))
		}
		if c.LLM.ModerationEnabled {
			errs = append(errs, errors.New("moderation is only available with provider openai"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown LLM provider %q", c.LLM.Provider))
	}

	if strings.TrimSpace(c.LLM.Model()) == "" {
		errs = append(errs, errors.New("model name must not be empty"))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature %v out of range [0,2]", c.LLM.Temperature))
	}
	if c.LLM.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.LLM.Concurrency < 1 || c.LLM.Concurrency > 16 {
		errs = append(errs, fmt.Errorf("concurrency %d out of range [1,16]", c.LLM.Concurrency))
	}
	if c.Limits.RunTimeout <= 0 {
		errs = append(errs, errors.New("run timeout must be positive"))
	}
	if c.Limits.MaxTextLength <= 0 {
		errs = append(errs, errors.New("max text length must be positive"))
	}
	if c.Limits.MaxSentences <= 0 {
		errs = append(errs, errors.New("max sentences must be positive"))
	}

	return errors.Join(errs...)
}
