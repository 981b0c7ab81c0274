package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/AjayAlluri/Toyota-Financing/internal/config"
)

var testMessages = []Message{
	{Role: "system", Content: "be brief"},
	{Role: "user", Content: "recommend a car"},
}

// TestOpenAIClientChat проверяет запрос и разбор ответа chat completions.
func TestOpenAIClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "gpt-4.1", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "json_object", gjson.GetBytes(body, "response_format.type").String())
		assert.Equal(t, int64(defaultMaxTokens), gjson.GetBytes(body, "max_tokens").Int())
		assert.Equal(t, "system", gjson.GetBytes(body, "messages.0.role").String())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"{\"ok\":true}"}}]}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("secret", server.URL+"/", "gpt-4.1", time.Second, 0)
	content, raw, err := client.Chat(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, content)
	assert.True(t, json.Valid(raw))
}

func TestOpenAIClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached"}}`))
	}))
	defer server.Close()

	client := NewOpenAIClient("secret", server.URL, "gpt-4.1", time.Second, 0)
	_, raw, err := client.Chat(context.Background(), testMessages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(429): rate limit reached")
	assert.NotEmpty(t, raw)
}

func TestClientsRequireAPIKey(t *testing.T) {
	clients := []Client{
		NewOpenAIClient("", "http://localhost", "gpt-4.1", time.Second, 0),
		NewGeminiClient(" ", "http://localhost", "gemini-1.5-flash", time.Second, 0),
		NewAnthropicClient("", "", "claude-3-5-haiku-latest", time.Second, 0),
	}

	for _, client := range clients {
		_, _, err := client.Chat(context.Background(), testMessages)
		assert.ErrorIs(t, err, ErrMissingAPIKey)
	}
}

// TestGeminiClientChat проверяет перенос системного сообщения в systemInstruction.
func TestGeminiClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "be brief", gjson.GetBytes(body, "systemInstruction.parts.0.text").String())
		assert.Equal(t, int64(1), gjson.GetBytes(body, "contents.#").Int())
		assert.Equal(t, "user", gjson.GetBytes(body, "contents.0.role").String())
		assert.Equal(t, int64(512), gjson.GetBytes(body, "generationConfig.maxOutputTokens").Int())

		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"a\":"},{"text":"1}"}]}}]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("secret", server.URL, "gemini-1.5-flash", time.Second, 512)
	content, _, err := client.Chat(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, content)
}

func TestGeminiClientEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	client := NewGeminiClient("secret", server.URL, "gemini-1.5-flash", time.Second, 0)
	_, _, err := client.Chat(context.Background(), testMessages)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing content")
}

// TestAnthropicClientChat проверяет вызов Messages API через SDK.
func TestAnthropicClientChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))

		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "claude-3-5-haiku-latest", gjson.GetBytes(body, "model").String())
		assert.Equal(t, "be brief", gjson.GetBytes(body, "system.0.text").String())
		assert.Equal(t, "recommend a car", gjson.GetBytes(body, "messages.0.content.0.text").String())

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "{\"Budget\":{}}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer server.Close()

	client := NewAnthropicClient("secret", server.URL, "claude-3-5-haiku-latest", 5*time.Second, 0)
	content, raw, err := client.Chat(context.Background(), testMessages)
	require.NoError(t, err)
	assert.Equal(t, `{"Budget":{}}`, content)
	assert.Equal(t, "msg_1", gjson.GetBytes(raw, "id").String())
}

func TestNewClientProviders(t *testing.T) {
	for _, provider := range []string{config.ProviderOpenAI, config.ProviderGroq, config.ProviderGemini, config.ProviderAnthropic} {
		client, err := NewClient(config.AIConfig{Provider: provider, APIKey: "key", Model: "m"})
		require.NoError(t, err, provider)
		assert.NotNil(t, client)
	}

	_, err := NewClient(config.AIConfig{Provider: "mistral"})
	assert.Error(t, err)
}

func TestSplitSystem(t *testing.T) {
	system, conversation := splitSystem([]Message{
		{Role: "system", Content: "a"},
		{Role: "user", Content: "b"},
		{Role: "system", Content: "c"},
	})
	assert.Equal(t, []string{"a", "c"}, system)
	assert.Equal(t, []Message{{Role: "user", Content: "b"}}, conversation)
}
