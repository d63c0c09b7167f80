package fee

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewCalculatorRateBounds(t *testing.T) {
	for _, rate := range []float64{0, -0.01, 1, 1.5} {
		_, err := NewCalculator(rate)
		require.Error(t, err, "rate %v must be rejected", rate)
	}

	calc, err := NewCalculator(0.01)
	require.NoError(t, err)
	require.InDelta(t, 0.01, calc.Rate(), 1e-12)
}

func TestComputeScenario(t *testing.T) {
	calc, err := NewCalculator(0.01)
	require.NoError(t, err)

	f, err := calc.Compute(1000, 150)
	require.NoError(t, err)

	require.True(t, f.USDFee.Equal(decimal.NewFromInt(10)), "usd fee: %s", f.USDFee)
	require.Equal(t, uint64(66666666), f.Lamports)
}

func TestComputeLinearInSwapAmount(t *testing.T) {
	calc, err := NewCalculator(0.01)
	require.NoError(t, err)

	single, err := calc.Compute(250, 42.5)
	require.NoError(t, err)
	double, err := calc.Compute(500, 42.5)
	require.NoError(t, err)

	require.True(t, double.USDFee.Equal(single.USDFee.Mul(decimal.NewFromInt(2))),
		"usd fee must be linear: %s vs %s", double.USDFee, single.USDFee)
}

func TestComputeZeroNativePrice(t *testing.T) {
	calc, err := NewCalculator(0.01)
	require.NoError(t, err)

	_, err = calc.Compute(1000, 0)
	require.Error(t, err, "zero native price must be a precondition failure, not Inf/NaN")

	_, err = calc.Compute(1000, -5)
	require.Error(t, err)
}

func TestComputeRejectsNonPositiveAmount(t *testing.T) {
	calc, err := NewCalculator(0.01)
	require.NoError(t, err)

	_, err = calc.Compute(0, 150)
	require.Error(t, err)
	_, err = calc.Compute(-10, 150)
	require.Error(t, err)
}

func TestComputeFloorsLamports(t *testing.T) {
	calc, err := NewCalculator(0.01)
	require.NoError(t, err)

	// usdFee = 1, lamports = floor(1/3 * 1e9) = 333333333
	f, err := calc.Compute(100, 3)
	require.NoError(t, err)
	require.Equal(t, uint64(333333333), f.Lamports)
}
