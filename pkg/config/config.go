package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration. Values come from the JSON
// config file first, then environment variables override on top.
type Config struct {
	Agent     AgentConfig     `json:"agent"`
	Providers ProvidersConfig `json:"providers"`
	Tools     ToolsConfig     `json:"tools"`
	Listeners ListenersConfig `json:"listeners"`
	Logging   LoggingConfig   `json:"logging"`
}

type AgentConfig struct {
	Provider      string `json:"provider" env:"TOOLSMITH_PROVIDER"`
	Model         string `json:"model" env:"TOOLSMITH_MODEL"`
	MaxIterations int    `json:"max_iterations" env:"MAX_ITERATIONS"`
	MaxTokens     int    `json:"max_tokens" env:"TOOLSMITH_MAX_TOKENS"`
}

type ProvidersConfig struct {
	Anthropic AnthropicConfig `json:"anthropic"`
	OpenAI    OpenAIConfig    `json:"openai"`
}

type AnthropicConfig struct {
	APIKey  string `json:"api_key" env:"ANTHROPIC_API_KEY"`
	BaseURL string `json:"base_url" env:"ANTHROPIC_BASE_URL"`
}

type OpenAIConfig struct {
	APIKey  string `json:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `json:"base_url" env:"OPENAI_BASE_URL"`
}

type ToolsConfig struct {
	// PythonBin is the interpreter used to validate and run created tools.
	PythonBin string `json:"python_bin" env:"TOOLSMITH_PYTHON"`
	PipBin    string `json:"pip_bin" env:"TOOLSMITH_PIP"`
	// InstallDeps controls whether requirements.txt files are installed
	// when a tool is created or loaded.
	InstallDeps bool `json:"install_deps" env:"TOOLSMITH_INSTALL_DEPS"`
}

type ListenersConfig struct {
	Cron      CronConfig      `json:"cron"`
	Webhook   WebhookConfig   `json:"webhook"`
	WebSocket WebSocketConfig `json:"websocket"`
	Telegram  TelegramConfig  `json:"telegram"`
	Discord   DiscordConfig   `json:"discord"`
}

type CronConfig struct {
	Enabled bool      `json:"enabled"`
	Jobs    []CronJob `json:"jobs"`
}

type CronJob struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	Message  string `json:"message"`
	Priority int    `json:"priority"`
}

type WebhookConfig struct {
	Enabled       bool   `json:"enabled"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Path          string `json:"path"`
	Token         string `json:"token" env:"TOOLSMITH_WEBHOOK_TOKEN"`
	RatePerMinute int    `json:"rate_per_minute"`
}

type WebSocketConfig struct {
	Enabled  bool   `json:"enabled"`
	URL      string `json:"url"`
	Priority int    `json:"priority"`
}

type TelegramConfig struct {
	Enabled bool    `json:"enabled"`
	Token   string  `json:"token" env:"TELEGRAM_BOT_TOKEN"`
	ChatIDs []int64 `json:"chat_ids"`
}

type DiscordConfig struct {
	Enabled    bool     `json:"enabled"`
	Token      string   `json:"token" env:"DISCORD_BOT_TOKEN"`
	ChannelIDs []string `json:"channel_ids"`
}

type LoggingConfig struct {
	Level  string `json:"level" env:"TOOLSMITH_LOG_LEVEL"`
	ToFile bool   `json:"to_file" env:"TOOLSMITH_LOG_TO_FILE"`
}

// DefaultConfig returns a configuration with workable defaults for
// interactive use without a config file.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Provider:      "anthropic",
			MaxIterations: 20,
			MaxTokens:     4096,
		},
		Tools: ToolsConfig{
			PythonBin:   "python3",
			PipBin:      "pip",
			InstallDeps: true,
		},
		Listeners: ListenersConfig{
			Webhook: WebhookConfig{
				Host:          "127.0.0.1",
				Port:          8089,
				Path:          "/events",
				RatePerMinute: 60,
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the config file at path if it exists, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Agent.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unknown provider %q (want anthropic or openai)", c.Agent.Provider)
	}
	if c.Agent.MaxIterations <= 0 {
		c.Agent.MaxIterations = 20
	}
	if c.Agent.MaxTokens <= 0 {
		c.Agent.MaxTokens = 4096
	}
	return nil
}

// Save writes the config as indented JSON, for `toolsmith init` style setup.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
