package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nubank/butu-chat/internal"
	"github.com/nubank/butu-chat/internal/config"
	"github.com/nubank/butu-chat/internal/provider"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubProvider records the content it receives and answers with a fixed result.
type stubProvider struct {
	reply string
	err   error
	panic bool
	got   []provider.UserContent
}

func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Reply(_ context.Context, c provider.UserContent) (string, error) {
	s.got = append(s.got, c)
	if s.panic {
		panic("boom")
	}
	return s.reply, s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:          "0",
		StaticDir:     t.TempDir(),
		AllowedOrigin: "*",
		MaxBodyBytes:  1 << 20,
		Persona:       "Butu",
		Provider:      config.ProviderConfig{Temperature: 0.4, MaxTokens: 500},
	}
}

func postChat(t *testing.T, h http.Handler, body string) (*httptest.ResponseRecorder, internal.ChatReply) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var reply internal.ChatReply
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reply), "body=%s", w.Body.String())
	return w, reply
}

func TestChat_RelaysText(t *testing.T) {
	stub := &stubProvider{reply: "Why did the gopher cross the road?"}
	h := NewRouter(testConfig(t), stub)

	w, reply := postChat(t, h, `{"message":"Tell me a joke"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Why did the gopher cross the road?", reply.Reply)
	require.Len(t, stub.got, 1)
	assert.Equal(t, "Tell me a joke", stub.got[0].Message)
	assert.Equal(t, "Reply ONLY in English.\n\nTell me a joke", stub.got[0].Text)
	assert.Empty(t, stub.got[0].ImageURL)
}

func TestChat_RelaysImage(t *testing.T) {
	stub := &stubProvider{reply: "A tiny PNG."}
	h := NewRouter(testConfig(t), stub)

	w, _ := postChat(t, h, `{"imageBase64":"iVBORw0KGgoAAAANSUhEUg=="}`)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.got, 1)
	assert.Equal(t, provider.DefaultImagePrompt, stub.got[0].Message)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgoAAAANSUhEUg==", stub.got[0].ImageURL)
}

func TestChat_EmptyRequestGetsGreetingPrompt(t *testing.T) {
	for _, body := range []string{`{}`, ``} {
		stub := &stubProvider{reply: "Hello!"}
		h := NewRouter(testConfig(t), stub)

		w, reply := postChat(t, h, body)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Hello!", reply.Reply)
		require.Len(t, stub.got, 1)
		assert.Equal(t, provider.DefaultTextPrompt, stub.got[0].Message)
	}
}

func TestChat_Failures(t *testing.T) {
	tests := []struct {
		name       string
		stub       *stubProvider
		wantStatus int
		wantReply  string
	}{
		{
			name:       "upstream non-200",
			stub:       &stubProvider{err: &provider.UpstreamError{StatusCode: 502, Body: "bad gateway"}},
			wantStatus: http.StatusInternalServerError,
			wantReply:  internal.ReplyUpstreamError,
		},
		{
			name:       "transport error",
			stub:       &stubProvider{err: errors.New("dial tcp: connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantReply:  internal.ReplyServerError,
		},
		{
			name:       "panic",
			stub:       &stubProvider{panic: true},
			wantStatus: http.StatusInternalServerError,
			wantReply:  internal.ReplyServerError,
		},
		{
			name:       "empty completion",
			stub:       &stubProvider{reply: ""},
			wantStatus: http.StatusOK,
			wantReply:  internal.ReplyCouldNotAnswer,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(testConfig(t), tc.stub)
			w, reply := postChat(t, h, `{"message":"hi"}`)
			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantReply, reply.Reply)
			assert.NotContains(t, w.Body.String(), "boom")
		})
	}
}

func TestChat_InvalidJSON(t *testing.T) {
	stub := &stubProvider{}
	h := NewRouter(testConfig(t), stub)

	w, reply := postChat(t, h, `{"message":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, internal.ReplyInvalidRequest, reply.Reply)
	assert.Empty(t, stub.got)
}

func TestChat_BodyTooLarge(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxBodyBytes = 64
	stub := &stubProvider{}
	h := NewRouter(cfg, stub)

	w, reply := postChat(t, h, `{"imageBase64":"`+strings.Repeat("A", 256)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, internal.ReplyTooLarge, reply.Reply)
	assert.Empty(t, stub.got)
}

func TestChat_UpstreamFailureEndToEnd(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		io.WriteString(w, `{"error":{"message":"model overloaded"}}`)
	}))
	defer upstream.Close()

	cfg := testConfig(t)
	cfg.Provider = config.ProviderConfig{
		APIKey:      "sk-test",
		BaseURL:     upstream.URL,
		Model:       "openai/gpt-4o",
		Temperature: 0.4,
		MaxTokens:   500,
		Timeout:     5 * time.Second,
	}
	p, err := provider.NewOpenRouterProvider(cfg.Provider, cfg.Persona)
	require.NoError(t, err)

	w, reply := postChat(t, NewRouter(cfg, p), `{"message":"Tell me a joke"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internal.ChatReply{Reply: "AI service error."}, reply)
}

func TestHealth(t *testing.T) {
	h := NewRouter(testConfig(t), &stubProvider{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "stub-model", body["model"])
}

func TestStaticAssets(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "index.html"), []byte("<h1>Butu</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(cfg.StaticDir, "script.js"), []byte("console.log(1)"), 0o600))
	h := NewRouter(cfg, &stubProvider{})

	for path, want := range map[string]string{"/": "<h1>Butu</h1>", "/script.js": "console.log(1)"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
	}

	req := httptest.NewRequest(http.MethodGet, "/missing.css", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := NewRouter(testConfig(t), &stubProvider{})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRequestID(t *testing.T) {
	h := NewRouter(testConfig(t), &stubProvider{reply: "ok"})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"x"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"x"}`))
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}
