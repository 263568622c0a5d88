// Package relay is the widget's client for the POST /chat endpoint.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nubank/butu-chat/internal"
)

// Indicator shows that a reply is on its way.
type Indicator interface {
	ShowTyping()
	HideTyping()
}

type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the relay at baseURL. A nil httpClient gets a
// client with a two minute timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Send relays one message and always resolves to displayable text: transport
// and decoding failures become a fixed fallback string. The indicator is shown
// for the duration of the call and hidden on every path.
func (c *Client) Send(ctx context.Context, ind Indicator, message, imageBase64 string) string {
	if ind != nil {
		ind.ShowTyping()
		defer ind.HideTyping()
	}

	reply, err := c.post(ctx, internal.ChatRequest{Message: message, ImageBase64: imageBase64})
	if err != nil {
		log.Debug().Err(err).Msg("relay request failed")
		return internal.ReplyRelayFailed
	}
	if reply == "" {
		return internal.ReplyNoResponse
	}
	return reply
}

func (c *Client) post(ctx context.Context, body internal.ChatRequest) (string, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	// error statuses still carry a displayable reply
	var out internal.ChatReply
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	return out.Reply, nil
}
