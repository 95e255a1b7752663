package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bi(x int64) *big.Int { return big.NewInt(x) }

func TestGetAmountOutWorkedExample(t *testing.T) {
	// reserves 1000/1000, fee 30 bps, amountIn 100:
	// amountInWithFee = 100*9970/10000 = 99 (truncated)
	// amountOut = 99*1000/(1000+99) = 90 (truncated)
	assert.Equal(t, bi(99), AmountInWithFee(bi(100), 30))
	assert.Equal(t, bi(90), GetAmountOut(bi(100), bi(1000), bi(1000), 30))
	assert.Equal(t, bi(1), SwapFee(bi(100), 30))
}

func TestGetAmountOutFeeFreeExactness(t *testing.T) {
	cases := []struct {
		amountIn, reserveIn, reserveOut int64
	}{
		{100, 1000, 1000},
		{1, 3, 7},
		{999999, 123456789, 987654321},
		{500, 500, 500},
	}
	for _, tc := range cases {
		want := new(big.Int).Mul(bi(tc.amountIn), bi(tc.reserveOut))
		want.Quo(want, new(big.Int).Add(bi(tc.reserveIn), bi(tc.amountIn)))
		got := GetAmountOut(bi(tc.amountIn), bi(tc.reserveIn), bi(tc.reserveOut), 0)
		assert.Equal(t, want, got, "amountIn=%d", tc.amountIn)
	}
}

func TestConstantProductNonDecreasingWithFee(t *testing.T) {
	cases := []struct {
		amountIn, reserveIn, reserveOut, feeBps int64
	}{
		{100, 1000, 1000, 30},
		{1, 1000000, 5, 30},
		{987654, 1000000, 2000000, 100},
		{5, 7, 11, 1},
		{1000000000, 1000000, 1000000, 30},
	}
	for _, tc := range cases {
		out := GetAmountOut(bi(tc.amountIn), bi(tc.reserveIn), bi(tc.reserveOut), tc.feeBps)
		require.True(t, out.Cmp(bi(tc.reserveOut)) < 0, "output must not drain the pool")

		before := new(big.Int).Mul(bi(tc.reserveIn), bi(tc.reserveOut))
		after := new(big.Int).Mul(
			new(big.Int).Add(bi(tc.reserveIn), bi(tc.amountIn)),
			new(big.Int).Sub(bi(tc.reserveOut), out),
		)
		assert.True(t, after.Cmp(before) >= 0,
			"product decreased: before=%s after=%s (in=%d)", before, after, tc.amountIn)
	}
}

func TestPriceImpactBps(t *testing.T) {
	// 100 in against a reserve of 1000 -> 10% -> 1000 bps
	assert.Equal(t, bi(1000), PriceImpactBps(bi(100), bi(1000)))
	assert.Equal(t, bi(0), PriceImpactBps(bi(100), bi(0)))
}

func TestMinimumOutput(t *testing.T) {
	assert.Equal(t, bi(995), MinimumOutput(bi(1000), 50))
	assert.Equal(t, bi(1000), MinimumOutput(bi(1000), 0))
}

func TestInitialLiquidity(t *testing.T) {
	// floor(sqrt(100*400)) = 200
	assert.Equal(t, bi(200), InitialLiquidity(bi(100), bi(400)))
	// non-perfect square truncates: floor(sqrt(2*3)) = 2
	assert.Equal(t, bi(2), InitialLiquidity(bi(2), bi(3)))
}

func TestProRataLiquidityMintsMinimum(t *testing.T) {
	// reserves 1000/2000, total 1414; deposit 100/100:
	// candA = 100*1414/1000 = 141, candB = 100*1414/2000 = 70
	minted, candA, candB := ProRataLiquidity(bi(100), bi(100), bi(1000), bi(2000), bi(1414))
	assert.Equal(t, bi(141), candA)
	assert.Equal(t, bi(70), candB)
	assert.Equal(t, bi(70), minted)
}

func TestDivergenceBps(t *testing.T) {
	// Compared via String: big.Int zero values differ in internal
	// representation depending on how they were produced.
	// candidates 141 vs 70: (141-70)*10000/141 = 5035
	assert.Equal(t, "5035", DivergenceBps(bi(141), bi(70)).String())
	// balanced deposit has zero divergence
	assert.Equal(t, "0", DivergenceBps(bi(100), bi(100)).String())
	// a single zero candidate is full divergence
	assert.Equal(t, "10000", DivergenceBps(bi(0), bi(100)).String())
	assert.Equal(t, "0", DivergenceBps(bi(0), bi(0)).String())
	// order independent
	assert.Equal(t, DivergenceBps(bi(70), bi(141)).String(), DivergenceBps(bi(141), bi(70)).String())
}
