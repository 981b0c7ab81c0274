package ai

import (
	"context"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// AnthropicClient calls the Messages API through the official SDK.
type AnthropicClient struct {
	client    sdk.Client
	apiKey    string
	model     string
	maxTokens int
}

// NewAnthropicClient создает клиент Anthropic. Пустой baseURL оставляет
// адрес SDK по умолчанию.
func NewAnthropicClient(apiKey, baseURL, model string, timeout time.Duration, maxTokens int) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &AnthropicClient{
		client:    sdk.NewClient(opts...),
		apiKey:    apiKey,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Chat отправляет сообщения в Anthropic и возвращает текст ответа и сырой ответ API.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message) (string, []byte, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return "", nil, eris.Wrap(ErrMissingAPIKey, "anthropic")
	}

	system, conversation := splitSystem(messages)

	params := sdk.MessageNewParams{
		Model:       sdk.Model(c.model),
		MaxTokens:   int64(resolveMaxTokens(c.maxTokens)),
		Temperature: sdk.Float(defaultTemperature),
	}

	for _, text := range system {
		params.System = append(params.System, sdk.TextBlockParam{Text: text})
	}

	for _, message := range conversation {
		block := sdk.NewTextBlock(message.Content)
		if message.Role == "assistant" {
			params.Messages = append(params.Messages, sdk.NewAssistantMessage(block))
			continue
		}
		params.Messages = append(params.Messages, sdk.NewUserMessage(block))
	}

	if len(params.Messages) == 0 {
		return "", nil, eris.New("anthropic: request has no user content")
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", nil, eris.Wrap(err, "anthropic: create message")
	}

	var builder strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			builder.WriteString(block.Text)
		}
	}

	raw := []byte(msg.RawJSON())
	if builder.Len() == 0 {
		return "", raw, eris.New("anthropic: response missing text content")
	}

	return builder.String(), raw, nil
}
