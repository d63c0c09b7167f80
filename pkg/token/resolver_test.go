package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"sol-swap/pkg/types"
)

const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

type fixture struct {
	resolver *Resolver
	server   *httptest.Server

	// toggles
	priceFails    bool
	metadataFails bool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}

	tokens := []types.Token{
		{Address: usdcMint, Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		{Address: "JUPyiwrYJFskUPiHa7hkeR8VUtAeFoSYbKedZNsDvCN", Symbol: "JUP", Name: "Jupiter", Decimals: 6},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/price", func(w http.ResponseWriter, r *http.Request) {
		if f.priceFails {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		mint := r.URL.Query().Get("ids")
		fmt.Fprintf(w, `{"data":{"%s":{"id":"%s","price":"150.0"}}}`, mint, mint)
	})
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tokens)
	})
	mux.HandleFunc("/token/", func(w http.ResponseWriter, r *http.Request) {
		if f.metadataFails {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		mint := r.URL.Path[len("/token/"):]
		for _, tok := range tokens {
			if tok.Address == mint {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(tok)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	f.resolver = NewResolver(f.server.URL+"/token", f.server.URL+"/list", f.server.URL+"/price")
	return f
}

func TestResolveNativeTicker(t *testing.T) {
	f := newFixture(t)

	for _, ident := range []string{"SOL", "sol", "Sol"} {
		tok, err := f.resolver.Resolve(context.Background(), ident)
		require.NoError(t, err, "identifier %q", ident)
		require.Equal(t, WrappedSOLMint, tok.Address)
		require.Equal(t, "SOL", tok.Symbol)
		require.Equal(t, uint8(9), tok.Decimals)
		require.InDelta(t, 150.0, tok.USDPrice, 1e-9)
	}
}

func TestResolveNativeTickerPriceFailure(t *testing.T) {
	f := newFixture(t)
	f.priceFails = true

	// Resolution must never fail solely because price enrichment failed.
	tok, err := f.resolver.Resolve(context.Background(), "SOL")
	require.NoError(t, err)
	require.Equal(t, WrappedSOLMint, tok.Address)
	require.Zero(t, tok.USDPrice)
}

func TestResolveByAddress(t *testing.T) {
	f := newFixture(t)

	tok, err := f.resolver.Resolve(context.Background(), usdcMint)
	require.NoError(t, err)
	require.Equal(t, usdcMint, tok.Address)
	require.Equal(t, "USDC", tok.Symbol)
	require.Equal(t, uint8(6), tok.Decimals)
}

func TestResolveAddressFallsBackToList(t *testing.T) {
	f := newFixture(t)
	f.metadataFails = true

	// The direct metadata lookup fails; the community list still matches by
	// exact address.
	tok, err := f.resolver.Resolve(context.Background(), usdcMint)
	require.NoError(t, err)
	require.Equal(t, usdcMint, tok.Address)
}

func TestResolveBySymbolAndName(t *testing.T) {
	f := newFixture(t)

	tok, err := f.resolver.Resolve(context.Background(), "usdc")
	require.NoError(t, err)
	require.Equal(t, usdcMint, tok.Address)

	tok, err = f.resolver.Resolve(context.Background(), "usd coin")
	require.NoError(t, err)
	require.Equal(t, usdcMint, tok.Address)
}

func TestResolveNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.resolver.Resolve(context.Background(), "NOSUCHTOKEN")
	require.Error(t, err)

	var notFound *NotFoundError
	require.True(t, errors.As(err, &notFound))
	require.Equal(t, "NOSUCHTOKEN", notFound.Identifier)
}

func TestNativePrice(t *testing.T) {
	f := newFixture(t)

	require.InDelta(t, 150.0, f.resolver.NativePrice(context.Background()), 1e-9)

	f.priceFails = true
	require.Zero(t, f.resolver.NativePrice(context.Background()))
}

func TestListTokensFilter(t *testing.T) {
	f := newFixture(t)

	all, err := f.resolver.ListTokens(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := f.resolver.ListTokens(context.Background(), "jup")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "JUP", filtered[0].Symbol)
}
