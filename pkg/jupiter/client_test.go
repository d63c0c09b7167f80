package jupiter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"sol-swap/pkg/types"
)

func TestQuotePassesParams(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/quote", r.URL.Path)
		gotQuery = map[string]string{
			"inputMint":   r.URL.Query().Get("inputMint"),
			"outputMint":  r.URL.Query().Get("outputMint"),
			"amount":      r.URL.Query().Get("amount"),
			"slippageBps": r.URL.Query().Get("slippageBps"),
		}
		fmt.Fprint(w, `{"inputMint":"A","outputMint":"B","outAmount":"12345"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	quote, err := client.Quote(context.Background(), types.QuoteParams{
		InputMint:   "A",
		OutputMint:  "B",
		Amount:      1000000000,
		SlippageBps: 100,
	})
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"inputMint":   "A",
		"outputMint":  "B",
		"amount":      "1000000000",
		"slippageBps": "100",
	}, gotQuery)

	// The quote stays an opaque blob.
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(quote, &parsed))
	require.Equal(t, "12345", parsed["outAmount"])
}

func TestQuoteNonSuccessIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"message":"no route found"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Quote(context.Background(), types.QuoteParams{InputMint: "A", OutputMint: "B", Amount: 1})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Contains(t, apiErr.Message, "no route found")
}

func TestSwapTransaction(t *testing.T) {
	rawTx := []byte{1, 2, 3, 4, 5}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/swap", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "wallet-pubkey", body["userPublicKey"])
		require.NotNil(t, body["quoteResponse"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"swapTransaction":"%s","lastValidBlockHeight":1234}`, base64.StdEncoding.EncodeToString(rawTx))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	got, err := client.SwapTransaction(context.Background(), json.RawMessage(`{"outAmount":"1"}`), "wallet-pubkey")
	require.NoError(t, err)
	require.Equal(t, rawTx, got)
}

func TestSwapTransactionMissingFieldIsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"lastValidBlockHeight":1234}`)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.SwapTransaction(context.Background(), json.RawMessage(`{}`), "wallet-pubkey")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Contains(t, apiErr.Message, "swapTransaction")
}
