package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"sol-swap/pkg/types"
)

// APIError is a non-success response from the aggregator. It is fatal for
// the swap attempt; the user must re-initiate.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("aggregator %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("aggregator %s returned status %d", e.Endpoint, e.StatusCode)
}

// Client wraps the Jupiter aggregator HTTP API.
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a client for the given aggregator base URL
// (e.g. https://quote-api.jup.ag/v6).
func NewClient(baseURL string) *Client {
	return &Client{
		http:    resty.New().SetTimeout(30 * time.Second),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// SetHTTPClient replaces the underlying resty client, used by tests.
func (c *Client) SetHTTPClient(h *resty.Client) { c.http = h }

// Quote requests a swap quote. The payload is consumed as an opaque
// pass-through blob: it is handed back verbatim to the swap-transaction
// endpoint and never interpreted locally.
func (c *Client) Quote(ctx context.Context, p types.QuoteParams) (json.RawMessage, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   p.InputMint,
			"outputMint":  p.OutputMint,
			"amount":      strconv.FormatUint(p.Amount, 10),
			"slippageBps": strconv.FormatUint(p.SlippageBps, 10),
		}).
		Get(c.baseURL + "/quote")
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Endpoint: "/quote", StatusCode: resp.StatusCode(), Message: extractMessage(resp.Body())}
	}
	if len(resp.Body()) == 0 {
		return nil, &APIError{Endpoint: "/quote", StatusCode: resp.StatusCode(), Message: "empty quote response"}
	}
	return json.RawMessage(resp.Body()), nil
}

// swapResponse is the swap-transaction endpoint payload. Only the serialized
// transaction matters here; its absence is fatal.
type swapResponse struct {
	SwapTransaction      string `json:"swapTransaction"`
	LastValidBlockHeight uint64 `json:"lastValidBlockHeight"`
}

// SwapTransaction posts the quote plus the wallet public key and returns the
// decoded serialized transaction bytes.
func (c *Client) SwapTransaction(ctx context.Context, quote json.RawMessage, userPublicKey string) ([]byte, error) {
	body := map[string]any{
		"quoteResponse":                 quote,
		"userPublicKey":                 userPublicKey,
		"computeUnitPriceMicroLamports": "auto",
		"useTokenLedger":                false,
	}

	var parsed swapResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post(c.baseURL + "/swap")
	if err != nil {
		return nil, fmt.Errorf("failed to get swap transaction: %w", err)
	}
	if resp.IsError() {
		return nil, &APIError{Endpoint: "/swap", StatusCode: resp.StatusCode(), Message: extractMessage(resp.Body())}
	}
	if parsed.SwapTransaction == "" {
		return nil, &APIError{Endpoint: "/swap", StatusCode: resp.StatusCode(), Message: "response missing swapTransaction"}
	}

	raw, err := base64.StdEncoding.DecodeString(parsed.SwapTransaction)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 swap transaction: %w", err)
	}
	return raw, nil
}

// extractMessage pulls a human-readable message out of an aggregator error
// body, falling back to the raw body.
func extractMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg, ok := parsed["message"].(string); ok {
			return msg
		}
		if msg, ok := parsed["error"].(string); ok {
			return msg
		}
	}
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
