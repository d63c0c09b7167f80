package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Defaults for the public Jupiter endpoints and the fee policy.
const (
	DefaultRPCURL       = "https://api.mainnet-beta.solana.com"
	DefaultJupiterURL   = "https://quote-api.jup.ag/v6"
	DefaultPriceURL     = "https://lite-api.jup.ag/price/v2"
	DefaultTokenListURL = "https://token.jup.ag/strict"
	DefaultMetadataURL  = "https://tokens.jup.ag/token"
	DefaultFeeRate      = 0.01
	DefaultSlippageBps  = 100
)

// Config holds the application configuration
type Config struct {
	// RPC access. When ProxyURL is set the swap pipeline talks to the
	// same-origin proxy instead of the node directly.
	RPCURL   string
	ProxyURL string

	// Proxy server settings (sol-swap proxy).
	ProxyListenAddr string
	UpstreamRPCURL  string
	RPCAPIKey       string

	// Wallet and fee policy.
	PrivateKey   string
	FeeRecipient string
	FeeRate      float64

	// Aggregator and token metadata endpoints.
	JupiterBaseURL string
	PriceURL       string
	TokenListURL   string
	MetadataURL    string

	SlippageBps uint64
	Commitment  string

	// Optional chat-history callback.
	CallbackURL string
	ChatID      string

	// Local swap history file. Empty means the default in $HOME.
	HistoryFile string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".sol-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	viper.SetDefault("rpc_url", DefaultRPCURL)
	viper.SetDefault("proxy_listen_addr", ":8787")
	viper.SetDefault("jupiter_base_url", DefaultJupiterURL)
	viper.SetDefault("price_url", DefaultPriceURL)
	viper.SetDefault("token_list_url", DefaultTokenListURL)
	viper.SetDefault("metadata_url", DefaultMetadataURL)
	viper.SetDefault("fee_rate", DefaultFeeRate)
	viper.SetDefault("slippage_bps", DefaultSlippageBps)
	viper.SetDefault("commitment", "confirmed")

	viper.SetEnvPrefix("SOL_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		RPCURL:          viper.GetString("rpc_url"),
		ProxyURL:        viper.GetString("proxy_url"),
		ProxyListenAddr: viper.GetString("proxy_listen_addr"),
		UpstreamRPCURL:  viper.GetString("upstream_rpc_url"),
		RPCAPIKey:       viper.GetString("rpc_api_key"),
		PrivateKey:      viper.GetString("private_key"),
		FeeRecipient:    viper.GetString("fee_recipient"),
		FeeRate:         viper.GetFloat64("fee_rate"),
		JupiterBaseURL:  viper.GetString("jupiter_base_url"),
		PriceURL:        viper.GetString("price_url"),
		TokenListURL:    viper.GetString("token_list_url"),
		MetadataURL:     viper.GetString("metadata_url"),
		SlippageBps:     viper.GetUint64("slippage_bps"),
		Commitment:      viper.GetString("commitment"),
		CallbackURL:     viper.GetString("callback_url"),
		ChatID:          viper.GetString("chat_id"),
		HistoryFile:     viper.GetString("history_file"),
	}

	if cfg.FeeRate <= 0 || cfg.FeeRate >= 1 {
		return nil, fmt.Errorf("fee_rate must be between 0 and 1 (exclusive), got %v", cfg.FeeRate)
	}

	globalConfig = cfg
	return cfg, nil
}

// RPCEndpoint returns the endpoint the swap pipeline should use: the proxy
// when one is configured, the node URL otherwise.
func (c *Config) RPCEndpoint() string {
	if c.ProxyURL != "" {
		return c.ProxyURL
	}
	return c.RPCURL
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
