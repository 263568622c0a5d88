package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nubank/butu-chat/internal/config"
)

type capturedRequest struct {
	Path    string
	Auth    string
	Title   string
	Referer string
	Body    map[string]any
}

func newUpstream(t *testing.T, status int, body string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.Path = r.URL.Path
		captured.Auth = r.Header.Get("Authorization")
		captured.Title = r.Header.Get("X-Title")
		captured.Referer = r.Header.Get("HTTP-Referer")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, captured
}

func testProviderConfig(baseURL string) config.ProviderConfig {
	return config.ProviderConfig{
		APIKey:      "sk-test",
		BaseURL:     baseURL + "/api/v1",
		Model:       "openai/gpt-4o",
		Temperature: 0.4,
		MaxTokens:   500,
		Referer:     "http://localhost:3000",
		Title:       "Butu AI Vision Chatbot",
		Timeout:     5 * time.Second,
	}
}

const completionJSON = `{
  "id": "gen-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "openai/gpt-4o",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Why did the gopher cross the road?"}}
  ]
}`

func TestNewOpenRouterProvider_RequiresKey(t *testing.T) {
	_, err := NewOpenRouterProvider(config.ProviderConfig{}, "Butu")
	assert.Error(t, err)
}

func TestOpenRouterProvider_TextReply(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusOK, completionJSON)

	p, err := NewOpenRouterProvider(testProviderConfig(srv.URL), "Butu")
	require.NoError(t, err)

	reply, err := p.Reply(context.Background(), BuildUserContent("Tell me a joke", ""))
	require.NoError(t, err)
	assert.Equal(t, "Why did the gopher cross the road?", reply)

	assert.Equal(t, "/api/v1/chat/completions", captured.Path)
	assert.Equal(t, "Bearer sk-test", captured.Auth)
	assert.Equal(t, "Butu AI Vision Chatbot", captured.Title)
	assert.Equal(t, "http://localhost:3000", captured.Referer)

	assert.Equal(t, "openai/gpt-4o", captured.Body["model"])
	assert.Equal(t, 0.4, captured.Body["temperature"])
	assert.Equal(t, float64(500), captured.Body["max_tokens"])

	messages, ok := captured.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)

	system := messages[0].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Equal(t, SystemPrompt("Butu"), system["content"])

	user := messages[1].(map[string]any)
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "Reply ONLY in English.\n\nTell me a joke", user["content"])
}

func TestOpenRouterProvider_ImageReply(t *testing.T) {
	srv, captured := newUpstream(t, http.StatusOK, completionJSON)

	p, err := NewOpenRouterProvider(testProviderConfig(srv.URL), "Butu")
	require.NoError(t, err)

	png := base64.StdEncoding.EncodeToString(pngHeader)
	_, err = p.Reply(context.Background(), BuildUserContent("", png))
	require.NoError(t, err)

	messages := captured.Body["messages"].([]any)
	user := messages[1].(map[string]any)
	parts, ok := user["content"].([]any)
	require.True(t, ok, "image turns are sent as content parts")
	require.Len(t, parts, 2)

	text := parts[0].(map[string]any)
	assert.Equal(t, "text", text["type"])
	assert.Equal(t, "Reply ONLY in English.\n\n"+DefaultImagePrompt, text["text"])

	image := parts[1].(map[string]any)
	assert.Equal(t, "image_url", image["type"])
	imageURL := image["image_url"].(map[string]any)
	assert.Equal(t, "data:image/png;base64,"+png, imageURL["url"])
}

func TestOpenRouterProvider_UpstreamError(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusUnauthorized, `{"error":{"message":"No auth credentials found","code":401}}`)

	p, err := NewOpenRouterProvider(testProviderConfig(srv.URL), "Butu")
	require.NoError(t, err)

	_, err = p.Reply(context.Background(), BuildUserContent("hi", ""))
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusUnauthorized, upstream.StatusCode)
	assert.Contains(t, upstream.Body, "No auth credentials found")
}

func TestOpenRouterProvider_NoChoices(t *testing.T) {
	srv, _ := newUpstream(t, http.StatusOK, `{"id":"gen-2","object":"chat.completion","created":0,"model":"openai/gpt-4o","choices":[]}`)

	p, err := NewOpenRouterProvider(testProviderConfig(srv.URL), "Butu")
	require.NoError(t, err)

	reply, err := p.Reply(context.Background(), BuildUserContent("hi", ""))
	require.NoError(t, err)
	assert.Empty(t, reply)
}
