package rpcproxy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const maxBodyBytes = 2 << 20

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInternalError  = -32603
)

// allowedMethods is the full set of RPC methods the swap pipeline needs.
// Everything else is rejected before touching the upstream node.
var allowedMethods = map[string]struct{}{
	"getLatestBlockhash":   {},
	"sendTransaction":      {},
	"getSignatureStatuses": {},
	"getBlockHeight":       {},
}

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Config holds the proxy server settings.
type Config struct {
	UpstreamURL string
	APIKey      string // appended as a bearer token, never exposed to callers
	Timeout     time.Duration
}

// Server forwards whitelisted JSON-RPC calls to the upstream Solana node.
// The envelope is passed through unchanged in both directions so the stock
// RPC client works against the proxy without adaptation; the point of the
// proxy is that the node API key stays server-side.
type Server struct {
	upstream string
	apiKey   string
	http     *http.Client
	log      *zap.Logger
}

// NewServer creates the forwarding handler.
func NewServer(cfg Config, log *zap.Logger) (*Server, error) {
	if cfg.UpstreamURL == "" {
		return nil, fmt.Errorf("upstream RPC URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		upstream: cfg.UpstreamURL,
		apiKey:   cfg.APIKey,
		http:     &http.Client{Timeout: timeout},
		log:      log,
	}, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		writeJSON(w, errorResponse(nil, codeParseError, "read error"))
		return
	}
	if len(body) > maxBodyBytes {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		return
	}

	reqs, err := decodeRequests(body)
	if err != nil {
		writeJSON(w, errorResponse(nil, codeParseError, "parse error"))
		return
	}

	for _, req := range reqs {
		if req.JSONRPC != "2.0" || req.Method == "" {
			writeJSON(w, errorResponse(req.ID, codeInvalidRequest, "invalid request"))
			return
		}
		if _, ok := allowedMethods[req.Method]; !ok {
			s.log.Warn("rejected method", zap.String("method", req.Method))
			writeJSON(w, errorResponse(req.ID, codeMethodNotFound, "method not allowed"))
			return
		}
	}

	start := time.Now()
	status, upstreamBody, err := s.forward(r, body)
	for _, req := range reqs {
		s.log.Info("forwarded",
			zap.String("method", req.Method),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			zap.Int("status", status),
			zap.Bool("error", err != nil),
		)
	}
	if err != nil {
		var id json.RawMessage
		if len(reqs) == 1 {
			id = reqs[0].ID
		}
		writeJSON(w, errorResponse(id, codeInternalError, "upstream error"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(upstreamBody)
}

// forward relays the original body to the upstream node, attaching the API
// key. The response body is returned verbatim.
func (s *Server) forward(r *http.Request, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, s.upstream, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, out, nil
}

// decodeRequests accepts a single envelope or a batch.
func decodeRequests(body []byte) ([]request, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		var reqs []request
		if err := json.Unmarshal(trimmed, &reqs); err != nil {
			return nil, err
		}
		if len(reqs) == 0 {
			return nil, fmt.Errorf("empty batch")
		}
		return reqs, nil
	}

	var req request
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, err
	}
	return []request{req}, nil
}

func errorResponse(id json.RawMessage, code int, message string) *response {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	return &response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &rpcError{Code: code, Message: message},
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
