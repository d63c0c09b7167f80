package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sol-swap/config"
	"sol-swap/pkg/fee"
	"sol-swap/pkg/history"
	"sol-swap/pkg/jupiter"
	"sol-swap/pkg/notify"
	"sol-swap/pkg/parser"
	"sol-swap/pkg/rpcproxy"
	"sol-swap/pkg/swap"
	"sol-swap/pkg/token"
	"sol-swap/pkg/types"
	"sol-swap/pkg/wallet"
)

var (
	slippageBps uint64
	noConfirm   bool
	noWait      bool
)

var swapCmd = &cobra.Command{
	Use:   "swap <amount> <source-token> to <dest-token>",
	Short: "Execute a token swap on Solana",
	Long: `Swap tokens on Solana through the Jupiter aggregator.

Token identifiers may be symbols, names, or mint addresses. A percentage
service fee, denominated in SOL, is transferred before the swap itself is
submitted. After submission the signature is polled until it finalizes,
fails, or the observation window runs out.

Examples:
  sol-swap swap 1 SOL to USDC
  sol-swap swap 0.5 SOL to JUP --slippage-bps 50
  sol-swap swap 100 EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v to SOL --yes
  sol-swap swap 1 SOL to USDC --no-wait`,
	Args: cobra.MinimumNArgs(1),
	Run:  runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)

	swapCmd.Flags().Uint64Var(&slippageBps, "slippage-bps", 0, "Slippage tolerance in basis points (default from config)")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompt")
	swapCmd.Flags().BoolVar(&noWait, "no-wait", false, "Return immediately after submission without polling for confirmation")
}

func runSwap(cmd *cobra.Command, args []string) {
	commandStr := strings.Join(args, " ")
	swapCmdParsed, err := parser.ParseSwapCommand(commandStr)
	if err != nil {
		printError(err)
		os.Exit(1)
	}
	if err := parser.ValidateSwapCommand(swapCmdParsed); err != nil {
		printError(err)
		os.Exit(1)
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load()
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	bps := cfg.SlippageBps
	if slippageBps > 0 {
		bps = slippageBps
	}

	ctx := context.Background()
	resolver := token.NewResolver(cfg.MetadataURL, cfg.TokenListURL, cfg.PriceURL)

	// Resolve both sides of the swap.
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput {
		s.Suffix = " Resolving tokens..."
		s.Start()
	}

	fromToken, err := resolver.Resolve(ctx, swapCmdParsed.FromIdent)
	var toToken *types.Token
	if err == nil {
		toToken, err = resolver.Resolve(ctx, swapCmdParsed.ToIdent)
	}
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		printError(err)
		os.Exit(1)
	}

	if err := runResolvedSwap(ctx, cfg, resolver, s, fromToken, toToken, swapCmdParsed, bps, verbose, jsonOutput); err != nil {
		reportSwapError(err)
		os.Exit(1)
	}
}

func runResolvedSwap(ctx context.Context, cfg *config.Config, resolver *token.Resolver, s *spinner.Spinner, fromToken, toToken *types.Token, cmdParsed *types.SwapCommand, bps uint64, verbose, jsonOutput bool) error {
	signer, err := wallet.NewLocalSigner(cfg.PrivateKey)
	if err != nil {
		return &swap.PreconditionError{Reason: err.Error()}
	}

	// The fee is always denominated in SOL, even when neither side of the
	// swap is SOL.
	nativePrice := nativePriceFor(ctx, resolver, fromToken, toToken)

	req := &types.SwapRequest{
		FromToken:      fromToken,
		ToToken:        toToken,
		Amount:         cmdParsed.Amount,
		SlippageBps:    bps,
		WalletAddress:  signer.PublicKey().String(),
		NativeUSDPrice: nativePrice,
	}

	if !jsonOutput {
		displaySwapSummary(req, cfg.FeeRate)
		if !noConfirm && !confirmSwap() {
			fmt.Println("\nSwap cancelled.")
			os.Exit(0)
		}
	}

	calc, err := fee.NewCalculator(cfg.FeeRate)
	if err != nil {
		return err
	}

	feeRecipient, err := solana.PublicKeyFromBase58(cfg.FeeRecipient)
	if err != nil {
		return &swap.PreconditionError{Reason: fmt.Sprintf("invalid fee recipient address: %v", err)}
	}

	rpcClient := rpcproxy.NewClient(cfg.RPCEndpoint())
	agg := jupiter.NewClient(cfg.JupiterBaseURL)
	executor := swap.NewExecutor(rpcClient, agg, signer, calc, feeRecipient)

	if !jsonOutput {
		s.Suffix = " Executing swap..."
		s.Start()
	}
	sig, err := executor.Execute(ctx, req)
	if !jsonOutput {
		s.Stop()
	}
	if err != nil {
		return err
	}

	if verbose && !jsonOutput {
		fmt.Printf("\nSwap transaction submitted: %s\n", sig)
	}

	outcome := types.Outcome{Status: types.StatusPending, Signature: sig.String()}
	if !noWait {
		if !jsonOutput {
			s.Suffix = " Waiting for confirmation..."
			s.Start()
		}
		poller := swap.NewPoller(rpcClient)
		outcome = poller.PollUntilTerminal(ctx, sig)
		if !jsonOutput {
			s.Stop()
		}
	}

	recordOutcome(cfg, req, outcome, verbose && !jsonOutput)

	if jsonOutput {
		jsonData, _ := json.MarshalIndent(outcome, "", "  ")
		fmt.Println(string(jsonData))
		return nil
	}

	displayOutcome(outcome)
	return nil
}

// nativePriceFor sources the SOL spot price from whichever side of the swap
// is SOL, falling back to a direct price lookup.
func nativePriceFor(ctx context.Context, resolver *token.Resolver, fromToken, toToken *types.Token) float64 {
	if fromToken.Address == token.WrappedSOLMint && fromToken.USDPrice > 0 {
		return fromToken.USDPrice
	}
	if toToken.Address == token.WrappedSOLMint && toToken.USDPrice > 0 {
		return toToken.USDPrice
	}
	return resolver.NativePrice(ctx)
}

// recordOutcome persists the attempt locally and, when configured, posts it
// to the chat-history callback. Neither failure affects the swap result.
func recordOutcome(cfg *config.Config, req *types.SwapRequest, outcome types.Outcome, verbose bool) {
	store, err := history.NewStorage(cfg.HistoryFile)
	if err == nil {
		err = store.Append(history.Record{
			Signature:  outcome.Signature,
			FromSymbol: req.FromToken.Symbol,
			ToSymbol:   req.ToToken.Symbol,
			Amount:     req.Amount,
			Status:     outcome.Status,
			Message:    outcome.Message,
		})
	}
	if err != nil && verbose {
		fmt.Printf("Warning: failed to record swap history: %v\n", err)
	}

	if cfg.CallbackURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := notify.New(cfg.CallbackURL).PostOutcome(ctx, cfg.ChatID, uuid.NewString(), outcome); err != nil && verbose {
			fmt.Printf("Warning: failed to post outcome callback: %v\n", err)
		}
	}
}

// reportSwapError distinguishes a declined wallet prompt from a system
// failure.
func reportSwapError(err error) {
	var rejection *swap.UserRejectionError
	if errors.As(err, &rejection) {
		color.Yellow("\nSwap cancelled: the wallet declined to sign.\n")
		return
	}
	printError(err)
}

func displaySwapSummary(req *types.SwapRequest, feeRate float64) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	color.Green("                      SWAP SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\n  From:      %s %s\n", req.Amount, color.YellowString(req.FromToken.Symbol))
	fmt.Printf("  To:        %s\n", color.YellowString(req.ToToken.Symbol))
	fmt.Printf("  Wallet:    %s\n", color.CyanString(req.WalletAddress))
	fmt.Printf("  Slippage:  %d bps\n", req.SlippageBps)
	fmt.Printf("  Fee:       %.2f%% of the swap value, paid in SOL\n", feeRate*100)
	if req.FromToken.USDPrice > 0 {
		fmt.Printf("  Price:     1 %s = $%.4f\n", req.FromToken.Symbol, req.FromToken.USDPrice)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}

func displayOutcome(outcome types.Outcome) {
	switch outcome.Status {
	case types.StatusConfirmed:
		printSuccess(color.GreenString("Swap confirmed!") + "\n  Signature: " + color.CyanString(outcome.Signature))
	case types.StatusFailed:
		color.Red("\nSwap failed: %s\n", outcome.Message)
		fmt.Printf("  Signature: %s\n\n", outcome.Signature)
	case types.StatusTimedOut:
		color.Yellow("\nConfirmation timed out; the transaction may still land.\n")
		fmt.Printf("  Check it on an explorer: https://solscan.io/tx/%s\n\n", outcome.Signature)
	default:
		fmt.Printf("\nSwap submitted. Signature: %s\n", color.CyanString(outcome.Signature))
		fmt.Printf("Monitor it with:\n")
		color.Cyan("  sol-swap status %s --watch\n\n", outcome.Signature)
	}
}

func confirmSwap() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("\nProceed with swap? (y/N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
