package ai

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"github.com/AjayAlluri/Toyota-Financing/internal/config"
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.2
)

var ErrMissingAPIKey = errors.New("ai api key is missing")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client sends a conversation to a model and returns the reply text together
// with the raw provider response.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, []byte, error)
}

// NewClient выбирает реализацию клиента по провайдеру из конфигурации.
func NewClient(cfg config.AIConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI, config.ProviderGroq:
		return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout, cfg.MaxOutputTokens), nil
	default:
		return nil, eris.Errorf("ai: unsupported provider %q", cfg.Provider)
	}
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}

func splitSystem(messages []Message) (system []string, conversation []Message) {
	for _, message := range messages {
		if message.Role == "system" {
			system = append(system, message.Content)
			continue
		}
		conversation = append(conversation, message)
	}
	return system, conversation
}
