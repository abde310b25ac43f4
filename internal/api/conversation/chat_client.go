package conversation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tripcanvas/tripcanvas/internal/types"
)

// ChatClient talks to the chat service. Network errors, non-2xx statuses and
// malformed bodies are all surfaced as one uniform failure; callers never
// branch on status codes.
type ChatClient interface {
	Send(ctx context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error)
}

var _ ChatClient = (*HTTPChatClient)(nil)

// HTTPChatClient posts to {baseURL}/api/chat.
type HTTPChatClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPChatClient(baseURL string, timeout time.Duration) *HTTPChatClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPChatClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *HTTPChatClient) Send(ctx context.Context, req types.ChatServiceRequest) (*types.ChatServiceResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("chat service request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("chat service returned status %d", resp.StatusCode)
	}

	var out types.ChatServiceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode chat response: %w", err)
	}
	return &out, nil
}
