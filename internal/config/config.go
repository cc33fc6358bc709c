package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

var (
	ErrMissingToken    = errors.New("TELEGRAM_BOT_TOKEN is required")
	ErrMissingDB       = errors.New("DATABASE_URL is required")
	ErrMissingLLMKey   = errors.New("API key for the LLM provider is required")
	ErrMissingNewsKey  = errors.New("NEWSAPI_KEY is required")
	ErrInvalidProvider = errors.New("invalid LLM provider")
)

const (
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	LLM      LLMConfig
	NewsAPI  NewsAPIConfig
	HTTP     HTTPConfig
	Log      LogConfig

	DefaultSummarySentences int
}

type TelegramConfig struct {
	Token string
}

type DatabaseConfig struct {
	URL string
}

type LLMConfig struct {
	Provider     string
	QueryModel   string
	SummaryModel string
	Timeout      time.Duration
	OpenAI       OpenAIConfig
	OpenRouter   OpenRouterConfig
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
}

type NewsAPIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

type HTTPConfig struct {
	Addr        string
	MetricsAddr string
}

type LogConfig struct {
	Level string
	// Output is a zap sink: a file path, "stdout" or "stderr" (default).
	Output string
}

// Load reads settings from the environment and, when configFile is not
// empty, from that file. Environment wins over the file. Nothing is
// validated here: each command checks what it needs.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Telegram: TelegramConfig{
			Token: v.GetString("telegram_bot_token"),
		},
		Database: DatabaseConfig{
			URL: v.GetString("database_url"),
		},
		LLM: LLMConfig{
			Provider:     v.GetString("llm_provider"),
			QueryModel:   v.GetString("query_model"),
			SummaryModel: v.GetString("summary_model"),
			Timeout:      time.Duration(v.GetInt("llm_timeout_sec")) * time.Second,
			OpenAI: OpenAIConfig{
				APIKey:  v.GetString("openai_api_key"),
				BaseURL: v.GetString("openai_base_url"),
			},
			OpenRouter: OpenRouterConfig{
				APIKey:  v.GetString("openrouter_api_key"),
				BaseURL: v.GetString("openrouter_base_url"),
			},
		},
		NewsAPI: NewsAPIConfig{
			APIKey:  v.GetString("newsapi_key"),
			BaseURL: v.GetString("newsapi_base_url"),
			Timeout: time.Duration(v.GetInt("newsapi_timeout_sec")) * time.Second,
		},
		HTTP: HTTPConfig{
			Addr:        v.GetString("http_addr"),
			MetricsAddr: v.GetString("metrics_addr"),
		},
		Log: LogConfig{
			Level:  v.GetString("log_level"),
			Output: v.GetString("log_output"),
		},
		DefaultSummarySentences: v.GetInt("default_summary_sentences"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm_provider", ProviderOpenAI)
	v.SetDefault("query_model", "gpt-4-turbo")
	v.SetDefault("summary_model", "gpt-4o")
	v.SetDefault("llm_timeout_sec", 60)
	v.SetDefault("openai_base_url", "")
	v.SetDefault("openai_api_key", "")
	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("newsapi_key", "")
	v.SetDefault("newsapi_base_url", "https://newsapi.org/v2")
	v.SetDefault("newsapi_timeout_sec", 30)
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("database_url", "")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_output", "stderr")
	v.SetDefault("default_summary_sentences", 3)
}

// ValidateLLM checks only what the completion client needs.
func (c *Config) ValidateLLM() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY", ErrMissingLLMKey)
		}
	case ProviderOpenRouter:
		if c.LLM.OpenRouter.APIKey == "" {
			return fmt.Errorf("%w: OPENROUTER_API_KEY", ErrMissingLLMKey)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidProvider, c.LLM.Provider)
	}
	return nil
}

// Validate checks the completion and news backend settings.
func (c *Config) Validate() error {
	if err := c.ValidateLLM(); err != nil {
		return err
	}
	if c.NewsAPI.APIKey == "" {
		return ErrMissingNewsKey
	}
	return nil
}

// ValidateBot additionally requires the Telegram token and the database.
func (c *Config) ValidateBot() error {
	if c.Telegram.Token == "" {
		return ErrMissingToken
	}
	if c.Database.URL == "" {
		return ErrMissingDB
	}
	return c.Validate()
}
