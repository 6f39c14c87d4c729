package providers

import (
	"fmt"
	"sort"

	"github.com/toolsmith-ai/toolsmith/pkg/config"
)

// FactoryFunc builds a provider from configuration.
type FactoryFunc func(cfg *config.Config) (Provider, error)

var registry = map[string]FactoryFunc{
	"anthropic": func(cfg *config.Config) (Provider, error) {
		if cfg.Providers.Anthropic.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		return NewAnthropicProvider(cfg.Providers.Anthropic.APIKey, cfg.Providers.Anthropic.BaseURL), nil
	},
	"openai": func(cfg *config.Config) (Provider, error) {
		if cfg.Providers.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAIProvider(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.BaseURL), nil
	},
}

// New builds the provider named in the config. Unknown names list the
// supported set in the error.
func New(name string, cfg *config.Config) (Provider, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (supported: %v)", name, Supported())
	}
	return factory(cfg)
}

// Supported returns the registered provider names in sorted order.
func Supported() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
