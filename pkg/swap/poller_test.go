package swap

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/require"

	"sol-swap/pkg/types"
)

type fakeStatusChecker struct {
	calls    atomic.Int32
	inFlight atomic.Int32
	overlap  atomic.Bool
	statuses []*rpc.SignatureStatusesResult
	err      error
}

func (f *fakeStatusChecker) GetSignatureStatuses(ctx context.Context, searchHistory bool, sigs ...solana.Signature) (*rpc.GetSignatureStatusesResult, error) {
	if f.inFlight.Add(1) > 1 {
		f.overlap.Store(true)
	}
	defer f.inFlight.Add(-1)

	n := int(f.calls.Add(1))
	if f.err != nil {
		return nil, f.err
	}

	var status *rpc.SignatureStatusesResult
	if len(f.statuses) > 0 {
		idx := n - 1
		if idx >= len(f.statuses) {
			idx = len(f.statuses) - 1
		}
		status = f.statuses[idx]
	}
	return &rpc.GetSignatureStatusesResult{Value: []*rpc.SignatureStatusesResult{status}}, nil
}

func testSignature() solana.Signature {
	var sig solana.Signature
	sig[0] = 0x42
	return sig
}

func TestPollerConfirmedOnFirstCheck(t *testing.T) {
	checker := &fakeStatusChecker{
		statuses: []*rpc.SignatureStatusesResult{
			{ConfirmationStatus: rpc.ConfirmationStatusFinalized},
		},
	}

	poller := NewPoller(checker)
	poller.SetInterval(time.Millisecond)

	out := poller.PollUntilTerminal(context.Background(), testSignature())
	require.Equal(t, types.StatusConfirmed, out.Status)
	require.Equal(t, testSignature().String(), out.Signature)
	require.Equal(t, int32(1), checker.calls.Load(), "no further checks once terminal")
}

func TestPollerFailedStatus(t *testing.T) {
	checker := &fakeStatusChecker{
		statuses: []*rpc.SignatureStatusesResult{
			nil,
			{Err: map[string]any{"InstructionError": []any{0, "Custom"}}},
		},
	}

	poller := NewPoller(checker)
	poller.SetInterval(time.Millisecond)

	out := poller.PollUntilTerminal(context.Background(), testSignature())
	require.Equal(t, types.StatusFailed, out.Status)
	require.Contains(t, out.Message, "InstructionError")
	require.Equal(t, int32(2), checker.calls.Load())
}

func TestPollerTimesOutAfterBudget(t *testing.T) {
	checker := &fakeStatusChecker{statuses: []*rpc.SignatureStatusesResult{nil}}

	poller := NewPoller(checker)
	poller.SetInterval(time.Millisecond)
	poller.SetMaxAttempts(45)

	out := poller.PollUntilTerminal(context.Background(), testSignature())
	require.Equal(t, types.StatusTimedOut, out.Status)
	require.Equal(t, testSignature().String(), out.Signature, "timed-out outcome still carries the signature")
	require.Equal(t, int32(45), checker.calls.Load())
	require.False(t, checker.overlap.Load(), "checks must never overlap")
}

func TestPollerTerminatesDespiteRPCErrors(t *testing.T) {
	checker := &fakeStatusChecker{err: errors.New("rpc unavailable")}

	poller := NewPoller(checker)
	poller.SetInterval(time.Millisecond)
	poller.SetMaxAttempts(5)

	start := time.Now()
	out := poller.PollUntilTerminal(context.Background(), testSignature())
	require.Equal(t, types.StatusTimedOut, out.Status)
	require.Equal(t, int32(5), checker.calls.Load())
	require.Less(t, time.Since(start), time.Second)
}

func TestPollerCancellation(t *testing.T) {
	checker := &fakeStatusChecker{statuses: []*rpc.SignatureStatusesResult{nil}}

	poller := NewPoller(checker)
	poller.SetInterval(time.Hour) // cancellation must not wait out the interval
	poller.SetMaxAttempts(45)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan types.Outcome, 1)
	go func() {
		done <- poller.PollUntilTerminal(ctx, testSignature())
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case out := <-done:
		require.Equal(t, types.StatusPending, out.Status)
		require.Equal(t, testSignature().String(), out.Signature)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on context cancellation")
	}
}
