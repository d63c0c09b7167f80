package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sol-swap/config"
	"sol-swap/pkg/rpcproxy"
)

var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the RPC proxy server",
	Long: `Run the same-origin RPC proxy. The proxy forwards the JSON-RPC methods
the swap pipeline needs to the upstream node, attaching the node API key
server-side so it never reaches the client.

Requires upstream_rpc_url (SOL_SWAP_UPSTREAM_RPC_URL) in the configuration.

Examples:
  sol-swap proxy
  SOL_SWAP_PROXY_LISTEN_ADDR=:9090 sol-swap proxy`,
	Run: runProxy,
}

func init() {
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) {
	verbose, _ := cmd.Flags().GetBool("verbose")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	logger, err := newProxyLogger(verbose)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	defer logger.Sync()

	handler, err := rpcproxy.NewServer(rpcproxy.Config{
		UpstreamURL: cfg.UpstreamRPCURL,
		APIKey:      cfg.RPCAPIKey,
	}, logger)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/solana/rpc", handler)

	server := &http.Server{
		Addr:              cfg.ProxyListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("proxy listening", zap.String("addr", cfg.ProxyListenAddr), zap.String("upstream", cfg.UpstreamRPCURL))
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			printError(err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}

	fmt.Println("Proxy stopped.")
}

func newProxyLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
