package swap

import (
	"context"
	"encoding/json"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"sol-swap/pkg/fee"
	"sol-swap/pkg/token"
	"sol-swap/pkg/types"
	"sol-swap/pkg/wallet"
)

// RPC is the slice of the Solana RPC surface the executor needs. The stock
// rpc.Client satisfies it, whether pointed at a node or at the proxy.
type RPC interface {
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
}

// Aggregator requests quotes and serialized swap transactions.
type Aggregator interface {
	Quote(ctx context.Context, p types.QuoteParams) (json.RawMessage, error)
	SwapTransaction(ctx context.Context, quote json.RawMessage, userPublicKey string) ([]byte, error)
}

const defaultSendRetries uint = 3

// Executor runs the swap pipeline: fee transfer, aggregator quote, swap
// transaction, submission. Steps are strictly sequential; each depends on
// the previous step's signed artifact. One Executor may serve many attempts;
// no state crosses attempts.
type Executor struct {
	rpc          RPC
	agg          Aggregator
	signer       wallet.Signer
	calc         *fee.Calculator
	feeRecipient solana.PublicKey
	sendRetries  uint
}

// NewExecutor wires the pipeline dependencies. signer may be nil; Execute
// then fails with a precondition error.
func NewExecutor(rpcClient RPC, agg Aggregator, signer wallet.Signer, calc *fee.Calculator, feeRecipient solana.PublicKey) *Executor {
	return &Executor{
		rpc:          rpcClient,
		agg:          agg,
		signer:       signer,
		calc:         calc,
		feeRecipient: feeRecipient,
		sendRetries:  defaultSendRetries,
	}
}

// Execute runs one swap attempt and returns the swap transaction's
// signature. The fee transfer is submitted first but its finality is not
// awaited before the swap proceeds; there is no compensation if one leg
// fails after the other succeeds.
func (e *Executor) Execute(ctx context.Context, req *types.SwapRequest) (solana.Signature, error) {
	if err := e.validate(req); err != nil {
		return solana.Signature{}, err
	}

	feeAmount, err := e.computeFee(req)
	if err != nil {
		return solana.Signature{}, err
	}

	if _, err := e.submitFeeTransfer(ctx, feeAmount.Lamports); err != nil {
		return solana.Signature{}, err
	}

	return e.submitSwap(ctx, req)
}

func (e *Executor) validate(req *types.SwapRequest) error {
	if e.signer == nil {
		return &PreconditionError{Reason: "wallet not connected"}
	}
	if req == nil || req.FromToken == nil || req.ToToken == nil {
		return &PreconditionError{Reason: "both tokens must be resolved"}
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return &PreconditionError{Reason: fmt.Sprintf("invalid swap amount %q", req.Amount)}
	}
	if e.feeRecipient.IsZero() {
		return &PreconditionError{Reason: "fee recipient not configured"}
	}
	return nil
}

// computeFee derives the lamport-denominated service fee. The native price
// comes from the request, or from whichever side of the swap is the native
// asset, so the fee is computable even when neither side is SOL as long as a
// price was supplied.
func (e *Executor) computeFee(req *types.SwapRequest) (fee.Fee, error) {
	if req.FromToken.USDPrice <= 0 {
		return fee.Fee{}, &PreconditionError{Reason: fmt.Sprintf("no USD price for %s, cannot compute fee", req.FromToken.Symbol)}
	}

	amount, _ := decimal.NewFromString(req.Amount)
	swapUSD, _ := amount.Mul(decimal.NewFromFloat(req.FromToken.USDPrice)).Float64()

	nativePrice := req.NativeUSDPrice
	if nativePrice <= 0 {
		switch {
		case req.FromToken.Address == token.WrappedSOLMint:
			nativePrice = req.FromToken.USDPrice
		case req.ToToken.Address == token.WrappedSOLMint:
			nativePrice = req.ToToken.USDPrice
		}
	}

	f, err := e.calc.Compute(swapUSD, nativePrice)
	if err != nil {
		return fee.Fee{}, &PreconditionError{Reason: err.Error()}
	}
	return f, nil
}

// submitFeeTransfer builds, signs and submits the native transfer covering
// the service fee. The returned signature is recorded but not awaited.
func (e *Executor) submitFeeTransfer(ctx context.Context, lamports uint64) (solana.Signature, error) {
	recent, err := e.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to get latest blockhash: %w", err)
	}

	instruction := system.NewTransferInstruction(
		lamports,
		e.signer.PublicKey(),
		e.feeRecipient,
	).Build()

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(e.signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to create fee transaction: %w", err)
	}

	if err := e.signer.Sign(tx); err != nil {
		return solana.Signature{}, classifySigningError(err)
	}

	retries := e.sendRetries
	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          &retries,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send fee transaction: %w", err)
	}
	return sig, nil
}

// submitSwap requests the quote and serialized swap transaction from the
// aggregator, refreshes the blockhash, signs and submits.
func (e *Executor) submitSwap(ctx context.Context, req *types.SwapRequest) (solana.Signature, error) {
	amountUnits, err := scaleToSmallestUnit(req.Amount, req.FromToken.Decimals)
	if err != nil {
		return solana.Signature{}, &PreconditionError{Reason: err.Error()}
	}

	quote, err := e.agg.Quote(ctx, types.QuoteParams{
		InputMint:   req.FromToken.Address,
		OutputMint:  req.ToToken.Address,
		Amount:      amountUnits,
		SlippageBps: req.SlippageBps,
	})
	if err != nil {
		return solana.Signature{}, &AggregatorError{Op: "quote", Err: err}
	}

	raw, err := e.agg.SwapTransaction(ctx, quote, e.signer.PublicKey().String())
	if err != nil {
		return solana.Signature{}, &AggregatorError{Op: "swap transaction", Err: err}
	}

	tx, err := solana.TransactionFromDecoder(bin.NewBinDecoder(raw))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to deserialize swap transaction: %w", err)
	}

	// The aggregator's blockhash may already be stale by the time the wallet
	// finishes signing; refresh it to the latest one.
	recent, err := e.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to refresh blockhash: %w", err)
	}
	tx.Message.RecentBlockhash = recent.Value.Blockhash

	if err := e.signer.Sign(tx); err != nil {
		return solana.Signature{}, classifySigningError(err)
	}

	retries := e.sendRetries
	sig, err := e.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: rpc.CommitmentConfirmed,
		MaxRetries:          &retries,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send swap transaction: %w", err)
	}
	return sig, nil
}

// scaleToSmallestUnit converts a human-unit decimal amount to the mint's
// smallest indivisible unit, flooring any excess precision.
func scaleToSmallestUnit(amount string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if !d.IsPositive() {
		return 0, fmt.Errorf("amount must be positive, got %s", amount)
	}
	scaled := d.Mul(decimal.New(1, int32(decimals))).Floor()
	if !scaled.IsPositive() {
		return 0, fmt.Errorf("amount %s is below the smallest unit of the token", amount)
	}
	return uint64(scaled.IntPart()), nil
}
