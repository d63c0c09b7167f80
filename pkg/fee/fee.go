package fee

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the scale of the native asset: 1 SOL = 1e9 lamports.
const NativeDecimals = 9

// Fee is the service commission on a swap, derived and never stored.
type Fee struct {
	USDFee   decimal.Decimal
	Lamports uint64
}

// Calculator computes the percentage-based service fee on the USD value of a
// swap and denominates it in lamports.
type Calculator struct {
	rate decimal.Decimal
}

// NewCalculator returns a calculator for the given commission rate.
// The rate must lie strictly between 0 and 1.
func NewCalculator(rate float64) (*Calculator, error) {
	if rate <= 0 || rate >= 1 {
		return nil, fmt.Errorf("fee rate must be between 0 and 1 (exclusive), got %v", rate)
	}
	return &Calculator{rate: decimal.NewFromFloat(rate)}, nil
}

// Rate returns the commission rate as a float.
func (c *Calculator) Rate() float64 {
	f, _ := c.rate.Float64()
	return f
}

// Compute derives the fee for a swap worth swapUSD, priced against the
// native asset's spot price. A zero or negative native price means the fee
// cannot be denominated in lamports; the swap attempt must abort rather than
// submit a zero or malformed fee transfer.
func (c *Calculator) Compute(swapUSD, nativeUSDPrice float64) (Fee, error) {
	if swapUSD <= 0 {
		return Fee{}, fmt.Errorf("swap amount must be positive, got %v", swapUSD)
	}
	if nativeUSDPrice <= 0 {
		return Fee{}, fmt.Errorf("native asset price unavailable (got %v), cannot denominate fee", nativeUSDPrice)
	}

	usdFee := decimal.NewFromFloat(swapUSD).Mul(c.rate)
	lamports := usdFee.
		Div(decimal.NewFromFloat(nativeUSDPrice)).
		Mul(decimal.New(1, NativeDecimals)).
		Floor()

	if !lamports.IsInteger() || lamports.IsNegative() {
		return Fee{}, fmt.Errorf("fee computation produced invalid lamport amount %s", lamports)
	}

	return Fee{
		USDFee:   usdFee,
		Lamports: uint64(lamports.IntPart()),
	}, nil
}
