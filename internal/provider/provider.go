package provider

import (
	"context"
	"fmt"
)

type ChatProvider interface {
	Model() string
	Reply(ctx context.Context, content UserContent) (string, error)
}

// UpstreamError is returned when the provider answered with a non-success status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// MockProvider answers without calling any external API, for offline development.
type MockProvider struct{}

func (m MockProvider) Model() string { return "mock-butu" }

func (m MockProvider) Reply(_ context.Context, content UserContent) (string, error) {
	if content.ImageURL != "" {
		return "(mock) I received an image and this note: \"" + content.Message + "\"", nil
	}
	return "(mock) You asked: \"" + content.Message + "\"", nil
}
