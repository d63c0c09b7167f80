package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"sol-swap/pkg/types"
)

// Client posts swap outcomes to the chat-history tool-invocation endpoint.
// Delivery is fire-and-forget from the pipeline's perspective: a failed
// callback does not roll back or retry the swap.
type Client struct {
	http *resty.Client
	url  string
}

// New creates a callback client. url is the full tool-invocation endpoint.
func New(url string) *Client {
	return &Client{
		http: resty.New().SetTimeout(10 * time.Second),
		url:  url,
	}
}

// SetHTTPClient replaces the underlying resty client, used by tests.
func (c *Client) SetHTTPClient(h *resty.Client) { c.http = h }

type invocation struct {
	ChatID     string        `json:"chatId"`
	ToolCallID string        `json:"toolCallId"`
	Status     string        `json:"status"`
	Result     types.Outcome `json:"result"`
}

// PostOutcome persists the outcome into chat history. Callers may ignore the
// returned error.
func (c *Client) PostOutcome(ctx context.Context, chatID, toolCallID string, out types.Outcome) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(invocation{
			ChatID:     chatID,
			ToolCallID: toolCallID,
			Status:     callbackStatus(out.Status),
			Result:     out,
		}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("failed to post outcome: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("outcome callback returned status %d", resp.StatusCode())
	}
	return nil
}

// callbackStatus maps poller outcomes onto the chat record's tagged union.
func callbackStatus(s types.OutcomeStatus) string {
	switch s {
	case types.StatusConfirmed:
		return "success"
	case types.StatusFailed:
		return "error"
	default:
		return "pending"
	}
}
