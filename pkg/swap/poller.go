package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"sol-swap/pkg/types"
)

// StatusChecker is the signature-status slice of the RPC surface. The stock
// rpc.Client satisfies it.
type StatusChecker interface {
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
}

const (
	DefaultPollInterval = 2 * time.Second
	DefaultMaxAttempts  = 45
)

// Poller watches a submitted transaction until it reaches a terminal state
// or the retry budget is exhausted. Checks are serial: a new one is only
// issued after the previous one returned, with a fixed delay in between.
type Poller struct {
	rpc      StatusChecker
	interval time.Duration
	max      int
}

// NewPoller creates a poller with the default 2s interval and 45-attempt
// budget (roughly 90 seconds of observation).
func NewPoller(rpcClient StatusChecker) *Poller {
	return &Poller{
		rpc:      rpcClient,
		interval: DefaultPollInterval,
		max:      DefaultMaxAttempts,
	}
}

// SetInterval overrides the delay between status checks.
func (p *Poller) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

// SetMaxAttempts overrides the retry budget.
func (p *Poller) SetMaxAttempts(n int) {
	if n > 0 {
		p.max = n
	}
}

// PollUntilTerminal checks the signature status immediately and then at the
// configured interval until the transaction is finalized, fails, or the
// budget runs out. A timed-out outcome is not a failure of the transaction,
// only of the observation window. Cancelling the context stops polling and
// yields a pending outcome.
func (p *Poller) PollUntilTerminal(ctx context.Context, sig solana.Signature) types.Outcome {
	for attempt := 0; attempt < p.max; attempt++ {
		if out, terminal := p.check(ctx, sig); terminal {
			return out
		}

		if attempt == p.max-1 {
			break
		}
		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return types.Outcome{Status: types.StatusPending, Signature: sig.String(), Message: "confirmation polling cancelled"}
		case <-timer.C:
		}
	}

	return types.Outcome{
		Status:    types.StatusTimedOut,
		Signature: sig.String(),
		Message:   fmt.Sprintf("no terminal status after %d checks; verify the signature on a block explorer", p.max),
	}
}

// check issues a single status query. RPC errors are not terminal; the
// budget still bounds total polling time.
func (p *Poller) check(ctx context.Context, sig solana.Signature) (types.Outcome, bool) {
	res, err := p.rpc.GetSignatureStatuses(ctx, true, sig)
	if err != nil || res == nil || len(res.Value) == 0 {
		return types.Outcome{}, false
	}

	status := res.Value[0]
	if status == nil {
		return types.Outcome{}, false
	}

	if status.Err != nil {
		return types.Outcome{
			Status:    types.StatusFailed,
			Signature: sig.String(),
			Message:   fmt.Sprintf("transaction failed: %v", status.Err),
		}, true
	}

	if status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
		return types.Outcome{
			Status:    types.StatusConfirmed,
			Signature: sig.String(),
		}, true
	}

	return types.Outcome{}, false
}
