package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-swap/config"
	"sol-swap/pkg/token"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <identifier>",
	Short: "Resolve a token identifier to its canonical metadata",
	Long: `Resolve a token symbol, name, or mint address to canonical metadata:
mint address, decimals, and the current USD price when available.

Examples:
  sol-swap resolve SOL
  sol-swap resolve USDC
  sol-swap resolve EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v`,
	Args: cobra.ExactArgs(1),
	Run:  runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	resolver := token.NewResolver(cfg.MetadataURL, cfg.TokenListURL, cfg.PriceURL)

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Resolving token..."
		s.Start()
	}

	tok, err := resolver.Resolve(context.Background(), args[0])
	if !jsonOutput {
		s.Stop()
	}

	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(tok, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                     RESOLVED TOKEN")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n  Symbol:    %s\n", color.YellowString(tok.Symbol))
	fmt.Printf("  Name:      %s\n", tok.Name)
	fmt.Printf("  Mint:      %s\n", color.CyanString(tok.Address))
	fmt.Printf("  Decimals:  %d\n", tok.Decimals)
	if tok.USDPrice > 0 {
		fmt.Printf("  Price:     $%.6f\n", tok.USDPrice)
	} else {
		fmt.Printf("  Price:     %s\n", color.HiBlackString("unavailable"))
	}
	fmt.Println("\n" + strings.Repeat("=", 60) + "\n")
}
