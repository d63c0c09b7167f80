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
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"sol-swap/config"
	"sol-swap/pkg/rpcproxy"
	"sol-swap/pkg/swap"
	"sol-swap/pkg/types"
)

var (
	watchStatus   bool
	watchInterval int
	maxChecks     int
)

var statusCmd = &cobra.Command{
	Use:   "status <signature>",
	Short: "Check the confirmation status of a swap transaction",
	Long: `Check the confirmation status of a submitted transaction by its signature.

A single check reports the current state. With --watch the signature is
polled at a fixed interval until it finalizes, fails, or the check budget
runs out.

Examples:
  sol-swap status 5K3x...abcd
  sol-swap status 5K3x...abcd --watch
  sol-swap status 5K3x...abcd --watch --interval 5 --max-checks 20`,
	Args: cobra.ExactArgs(1),
	Run:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&watchStatus, "watch", "w", false, "Poll until the transaction reaches a terminal state")
	statusCmd.Flags().IntVar(&watchInterval, "interval", 2, "Polling interval in seconds (when watching)")
	statusCmd.Flags().IntVar(&maxChecks, "max-checks", swap.DefaultMaxAttempts, "Maximum number of status checks (when watching)")
}

func runStatus(cmd *cobra.Command, args []string) {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sig, err := solana.SignatureFromBase58(args[0])
	if err != nil {
		printError(fmt.Errorf("invalid transaction signature: %w", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	rpcClient := rpcproxy.NewClient(cfg.RPCEndpoint())
	poller := swap.NewPoller(rpcClient)
	if watchStatus {
		poller.SetInterval(time.Duration(watchInterval) * time.Second)
		poller.SetMaxAttempts(maxChecks)
	} else {
		// A single immediate check.
		poller.SetMaxAttempts(1)
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Checking transaction status..."
		s.Start()
	}

	outcome := poller.PollUntilTerminal(context.Background(), sig)

	if !jsonOutput {
		s.Stop()
	}

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(outcome, "", "  ")
		fmt.Println(string(jsonData))
		return
	}

	displayStatusOutcome(outcome, watchStatus)
}

func displayStatusOutcome(outcome types.Outcome, watched bool) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	color.Green("                     TRANSACTION STATUS")
	fmt.Println(strings.Repeat("=", 70))

	fmt.Printf("\n  Signature: %s\n", color.CyanString(outcome.Signature))
	fmt.Printf("  Status:    %s\n", coloredOutcomeStatus(outcome.Status, watched))
	if outcome.Message != "" {
		fmt.Printf("  Detail:    %s\n", outcome.Message)
	}
	if outcome.Status == types.StatusTimedOut || (!watched && !outcome.Status.Terminal()) {
		fmt.Printf("  Explorer:  https://solscan.io/tx/%s\n", outcome.Signature)
	}

	fmt.Println("\n" + strings.Repeat("=", 70) + "\n")
}

func coloredOutcomeStatus(status types.OutcomeStatus, watched bool) string {
	switch status {
	case types.StatusConfirmed:
		return color.GreenString(strings.ToUpper(string(status)))
	case types.StatusFailed:
		return color.RedString(strings.ToUpper(string(status)))
	case types.StatusTimedOut:
		if !watched {
			// A single check that found nothing terminal is just "pending".
			return color.YellowString("PENDING")
		}
		return color.YellowString(strings.ToUpper(string(status)))
	default:
		return color.YellowString(strings.ToUpper(string(status)))
	}
}
