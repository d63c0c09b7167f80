package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sol-swap",
	Short: "A CLI for Solana token swaps via the Jupiter aggregator",
	Long: `sol-swap is a command-line tool that executes Solana token swaps through
the Jupiter aggregator. It resolves token identifiers, charges a small service
fee in SOL, submits the swap, and polls the signature until it is finalized.

Examples:
  sol-swap swap 1 SOL to USDC
  sol-swap resolve USDC
  sol-swap status <signature> --watch
  sol-swap list-tokens --symbol JUP
  sol-swap proxy`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
}

func printError(err error) {
	fmt.Printf("\nError: %v\n\n", err)
}

func printSuccess(message string) {
	fmt.Printf("\n%s\n\n", message)
}
