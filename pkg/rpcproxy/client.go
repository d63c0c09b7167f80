package rpcproxy

import (
	"github.com/gagliardetto/solana-go/rpc"
)

// NewClient returns an RPC client bound to the proxy endpoint. The proxy
// preserves the JSON-RPC envelope in both directions, so the stock client is
// a drop-in: only the four methods the swap pipeline uses will be accepted.
func NewClient(endpoint string) *rpc.Client {
	return rpc.New(endpoint)
}
