package types

// Token is the resolved metadata for one side of a swap. It is built fresh
// on every resolution and never mutated afterwards.
type Token struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals uint8   `json:"decimals"`
	IconURL  string  `json:"logoURI,omitempty"`
	USDPrice float64 `json:"usdPrice,omitempty"`
}

// SwapCommand is the raw user input before token resolution.
type SwapCommand struct {
	Amount    string
	FromIdent string
	ToIdent   string
}

// SwapRequest is a fully resolved, single-use swap order. Created once the
// user confirms, consumed once by the executor.
type SwapRequest struct {
	FromToken      *Token
	ToToken        *Token
	Amount         string // human units, decimal string
	SlippageBps    uint64
	WalletAddress  string
	NativeUSDPrice float64 // spot price of SOL, used to denominate the service fee
}

// QuoteParams are the inputs to the aggregator's quote endpoint.
type QuoteParams struct {
	InputMint   string
	OutputMint  string
	Amount      uint64 // smallest units of the input mint
	SlippageBps uint64
}

// OutcomeStatus classifies how a confirmation attempt ended.
type OutcomeStatus string

const (
	StatusConfirmed OutcomeStatus = "confirmed"
	StatusFailed    OutcomeStatus = "failed"
	StatusTimedOut  OutcomeStatus = "timed-out"
	StatusPending   OutcomeStatus = "pending"
)

// Terminal reports whether the status is final. Once terminal, no further
// status queries may be issued for the signature.
func (s OutcomeStatus) Terminal() bool {
	return s == StatusConfirmed || s == StatusFailed
}

// Outcome is the result of polling a submitted swap transaction. A timed-out
// outcome still carries the signature so the user can check an explorer.
type Outcome struct {
	Status    OutcomeStatus `json:"status"`
	Signature string        `json:"signature,omitempty"`
	Message   string        `json:"message,omitempty"`
}
