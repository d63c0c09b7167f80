package token

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/go-resty/resty/v2"

	"sol-swap/pkg/types"
)

// WrappedSOLMint is the sentinel mint address for the native asset.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

const nativeTicker = "SOL"

// NotFoundError reports an identifier that matched no token through any
// resolution path.
type NotFoundError struct {
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("token '%s' not found", e.Identifier)
}

// Resolver resolves a user-supplied token identifier (symbol, name, or mint
// address) to canonical token metadata. Resolutions are single-shot and
// uncached; swap attempts are infrequent and user-initiated.
type Resolver struct {
	http         *resty.Client
	metadataURL  string
	tokenListURL string
	priceURL     string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHTTPClient replaces the underlying resty client, used by tests.
func WithHTTPClient(c *resty.Client) Option {
	return func(r *Resolver) { r.http = c }
}

// NewResolver creates a resolver against the given metadata, token-list and
// price endpoints.
func NewResolver(metadataURL, tokenListURL, priceURL string, opts ...Option) *Resolver {
	r := &Resolver{
		http:         resty.New().SetTimeout(15 * time.Second),
		metadataURL:  strings.TrimRight(metadataURL, "/"),
		tokenListURL: tokenListURL,
		priceURL:     priceURL,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve maps identifier to token metadata. The native ticker short-circuits
// to the wrapped-SOL descriptor, address-shaped identifiers go through the
// direct metadata lookup, and anything else falls back to the community token
// list. Price enrichment is best-effort and never fails a resolution.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*types.Token, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, &NotFoundError{Identifier: identifier}
	}

	if strings.EqualFold(identifier, nativeTicker) {
		tok := &types.Token{
			Address:  WrappedSOLMint,
			Symbol:   nativeTicker,
			Name:     "Solana",
			Decimals: 9,
		}
		tok.USDPrice = r.lookupPrice(ctx, WrappedSOLMint)
		return tok, nil
	}

	if isAddress(identifier) {
		if tok, err := r.lookupByAddress(ctx, identifier); err == nil {
			tok.USDPrice = r.lookupPrice(ctx, tok.Address)
			return tok, nil
		}
		// fall through to the token list on lookup failure
	}

	tok, err := r.searchTokenList(ctx, identifier)
	if err != nil {
		return nil, err
	}
	tok.USDPrice = r.lookupPrice(ctx, tok.Address)
	return tok, nil
}

// NativePrice returns the current SOL spot price, or 0 when the lookup fails.
func (r *Resolver) NativePrice(ctx context.Context) float64 {
	return r.lookupPrice(ctx, WrappedSOLMint)
}

// isAddress reports whether the identifier has the shape of a Solana public
// key (base58, 32 bytes).
func isAddress(identifier string) bool {
	_, err := solana.PublicKeyFromBase58(identifier)
	return err == nil
}

func (r *Resolver) lookupByAddress(ctx context.Context, mint string) (*types.Token, error) {
	var tok types.Token
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&tok).
		Get(r.metadataURL + "/" + mint)
	if err != nil {
		return nil, fmt.Errorf("metadata lookup for %s: %w", mint, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("metadata lookup for %s: status %d", mint, resp.StatusCode())
	}
	if tok.Address == "" {
		return nil, fmt.Errorf("metadata lookup for %s: empty response", mint)
	}
	return &tok, nil
}

func (r *Resolver) searchTokenList(ctx context.Context, identifier string) (*types.Token, error) {
	var list []types.Token
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&list).
		Get(r.tokenListURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token list: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch token list: status %d", resp.StatusCode())
	}

	// Exact address match wins over symbol or name matches.
	for i := range list {
		if list[i].Address == identifier {
			return &list[i], nil
		}
	}
	for i := range list {
		if strings.EqualFold(list[i].Symbol, identifier) {
			return &list[i], nil
		}
	}
	for i := range list {
		if strings.EqualFold(list[i].Name, identifier) {
			return &list[i], nil
		}
	}

	return nil, &NotFoundError{Identifier: identifier}
}

// priceResponse mirrors the price endpoint payload:
// {"data":{"<mint>":{"id":"<mint>","price":"150.0"}}}
type priceResponse struct {
	Data map[string]struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"data"`
}

func (r *Resolver) lookupPrice(ctx context.Context, mint string) float64 {
	resp, err := r.http.R().
		SetContext(ctx).
		SetQueryParam("ids", mint).
		Get(r.priceURL)
	if err != nil || resp.IsError() {
		return 0
	}

	var parsed priceResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return 0
	}
	entry, ok := parsed.Data[mint]
	if !ok {
		return 0
	}
	price, err := strconv.ParseFloat(entry.Price, 64)
	if err != nil || price < 0 {
		return 0
	}
	return price
}

// ListTokens fetches the community token list, optionally filtered by symbol
// substring (case-insensitive).
func (r *Resolver) ListTokens(ctx context.Context, symbolFilter string) ([]types.Token, error) {
	var list []types.Token
	resp, err := r.http.R().
		SetContext(ctx).
		SetResult(&list).
		Get(r.tokenListURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch token list: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch token list: status %d", resp.StatusCode())
	}

	if symbolFilter == "" {
		return list, nil
	}
	var filtered []types.Token
	for _, tok := range list {
		if strings.Contains(strings.ToUpper(tok.Symbol), strings.ToUpper(symbolFilter)) {
			filtered = append(filtered, tok)
		}
	}
	return filtered, nil
}
