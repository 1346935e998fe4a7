package config

import "time"

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds all application settings.
type Config struct {
	LLM    LLMConfig    `yaml:"llm"`
	Limits LimitsConfig `yaml:"limits"`
	AWS    AWSConfig    `yaml:"aws"`
	Log    LogConfig    `yaml:"log"`
}

type LLMConfig struct {
	Provider          string        `yaml:"provider"           env:"LLM_PROVIDER"         env-default:"openai"`
	Temperature       float64       `yaml:"temperature"        env:"LLM_TEMPERATURE"      env-default:"0.2"`
	RequestTimeout    time.Duration `yaml:"request_timeout"    env:"LLM_REQUEST_TIMEOUT"  env-default:"60s"`
	Concurrency       int           `yaml:"concurrency"        env:"LLM_CONCURRENCY"      env-default:"1"`
	ModerationEnabled bool          `yaml:"moderation_enabled" env:"MODERATION_ENABLED"   env-default:"false"`

	OpenAIAPIKey  string `yaml:"openai_api_key"  env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `yaml:"openai_base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	OpenAIModel   string `yaml:"openai_model"    env:"OPENAI_MODEL"    env-default:"gpt-4o-mini"`

	AnthropicAPIKey    string `yaml:"anthropic_api_key"    env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL   string `yaml:"anthropic_base_url"   env:"ANTHROPIC_BASE_URL"`
	AnthropicModel     string `yaml:"anthropic_model"      env:"ANTHROPIC_MODEL"      env-default:"claude-3-5-haiku-latest"`
	AnthropicMaxTokens int64  `yaml:"anthropic_max_tokens" env:"ANTHROPIC_MAX_TOKENS" env-default:"1024"` // the Messages API requires a cap

	GeminiAPIKey  string `yaml:"gemini_api_key"  env:"GEMINI_API_KEY"`
	GeminiBaseURL string `yaml:"gemini_base_url" env:"GEMINI_BASE_URL"`
	GeminiModel   string `yaml:"gemini_model"    env:"GEMINI_MODEL"    env-default:"gemini-2.0-flash"`
}

// Model returns the model name of the selected provider.
func (c LLMConfig) Model() string {
	switch c.Provider {
	case ProviderAnthropic:
		return c.AnthropicModel
	case ProviderGemini:
		return c.GeminiModel
	default:
		return c.OpenAIModel
	}
}

type LimitsConfig struct {
	RunTimeout    time.Duration `yaml:"run_timeout"     env:"RUN_TIMEOUT"     env-default:"10m"`
	MaxTextLength int           `yaml:"max_text_length" env:"MAX_TEXT_LENGTH" env-default:"20000"`
	MaxSentences  int           `yaml:"max_sentences"   env:"MAX_SENTENCES"   env-default:"200"`
}

// AWSConfig points at the SSM parameters used when the OpenAI key is not
// given directly.
type AWSConfig struct {
	ParamPrefix string `yaml:"param_prefix" env:"PARAM_PREFIX"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}
