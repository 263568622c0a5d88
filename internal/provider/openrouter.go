package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nubank/butu-chat/internal/config"
)

// OpenRouterProvider talks to an OpenAI-compatible chat-completions endpoint
// (OpenRouter by default) with vision content parts.
type OpenRouterProvider struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int64
	system      string
}

func NewOpenRouterProvider(cfg config.ProviderConfig, persona string) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OPENROUTER_API_KEY is empty")
	}
	if cfg.Model == "" {
		cfg.Model = "openai/gpt-4o"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		// every failure is terminal for the request
		option.WithMaxRetries(0),
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenRouterProvider{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		system:      SystemPrompt(persona),
	}, nil
}

func (p *OpenRouterProvider) Model() string { return p.model }

// Reply returns the first completion's text, or "" when the provider sent none.
func (p *OpenRouterProvider) Reply(ctx context.Context, content UserContent) (string, error) {
	var user openai.ChatCompletionMessageParamUnion
	if content.ImageURL != "" {
		user = openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
			openai.TextContentPart(content.Text),
			openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
				URL: content.ImageURL,
			}),
		})
	} else {
		user = openai.UserMessage(content.Text)
	}

	completion, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.system),
			user,
		},
		Temperature: openai.Float(p.temperature),
		MaxTokens:   openai.Int(p.maxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{
				StatusCode: apiErr.StatusCode,
				Body:       string(apiErr.DumpResponse(true)),
			}
		}
		return "", err
	}

	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
