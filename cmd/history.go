package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sol-swap/config"
	"sol-swap/pkg/history"
	"sol-swap/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past swap attempts",
	Long: `List the swap attempts recorded locally, newest last.

Examples:
  sol-swap history
  sol-swap history --json`,
	Run: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	store, err := history.NewStorage(cfg.HistoryFile)
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	records := store.List()

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	if len(records) == 0 {
		fmt.Println("\nNo swaps recorded yet.")
		return
	}

	fmt.Println("\n" + strings.Repeat("=", 100))
	color.Green("                                     SWAP HISTORY")
	fmt.Println(strings.Repeat("=", 100))
	fmt.Println()

	for _, rec := range records {
		sig := rec.Signature
		if len(sig) > 20 {
			sig = sig[:8] + "..." + sig[len(sig)-8:]
		}
		fmt.Printf("  %s  %-10s  %8s %-6s -> %-6s  %s\n",
			rec.Timestamp.Format("2006-01-02 15:04:05"),
			coloredHistoryStatus(rec.Status),
			rec.Amount,
			color.YellowString(rec.FromSymbol),
			color.YellowString(rec.ToSymbol),
			color.HiBlackString(sig))
	}

	fmt.Println("\n" + strings.Repeat("=", 100))
	fmt.Printf("\nTotal: %d swaps\n\n", len(records))
}

func coloredHistoryStatus(status types.OutcomeStatus) string {
	switch status {
	case types.StatusConfirmed:
		return color.GreenString(string(status))
	case types.StatusFailed:
		return color.RedString(string(status))
	default:
		return color.YellowString(string(status))
	}
}
