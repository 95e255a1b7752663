package utils

import (
	"math/big"
)

// Integer constant-product pricing. All amounts are in the token's smallest
// unit; divisions truncate toward zero, matching on-ledger bookkeeping.

var bpsDenom = big.NewInt(10000)

// AmountInWithFee returns amountIn net of the swap fee:
// amountIn * (10000 - feeBps) / 10000.
func AmountInWithFee(amountIn *big.Int, feeBps int64) *big.Int {
	net := new(big.Int).Mul(amountIn, big.NewInt(10000-feeBps))
	return net.Quo(net, bpsDenom)
}

// GetAmountOut prices a swap against constant-product reserves with the fee
// taken from the input side:
// amountOut = amountInWithFee * reserveOut / (reserveIn + amountInWithFee).
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int, feeBps int64) *big.Int {
	netIn := AmountInWithFee(amountIn, feeBps)
	num := new(big.Int).Mul(netIn, reserveOut)
	den := new(big.Int).Add(reserveIn, netIn)
	return num.Quo(num, den)
}

// SwapFee returns the input-side amount retained by the pool:
// amountIn - amountInWithFee.
func SwapFee(amountIn *big.Int, feeBps int64) *big.Int {
	return new(big.Int).Sub(amountIn, AmountInWithFee(amountIn, feeBps))
}

// PriceImpactBps approximates the swap's price impact as
// amountIn * 10000 / reserveIn. This is the legacy display approximation,
// not the exact marginal-price delta of the curve.
func PriceImpactBps(amountIn, reserveIn *big.Int) *big.Int {
	if reserveIn.Sign() == 0 {
		return big.NewInt(0)
	}
	impact := new(big.Int).Mul(amountIn, bpsDenom)
	return impact.Quo(impact, reserveIn)
}

// MinimumOutput applies a slippage allowance to a quoted output:
// amountOut * (10000 - slippageBps) / 10000.
func MinimumOutput(amountOut *big.Int, slippageBps int64) *big.Int {
	min := new(big.Int).Mul(amountOut, big.NewInt(10000-slippageBps))
	return min.Quo(min, bpsDenom)
}

// InitialLiquidity is the LP supply minted for the first deposit into a
// pool: floor(sqrt(amountA * amountB)).
func InitialLiquidity(amountA, amountB *big.Int) *big.Int {
	product := new(big.Int).Mul(amountA, amountB)
	return product.Sqrt(product)
}

// ProRataLiquidity computes the LP tokens minted for a dual-sided deposit
// into an existing pool. Each side yields an independent candidate
// (amount * totalLiquidity / reserve); the minted amount is the minimum of
// the two, which stops an unbalanced deposit from diluting existing holders.
// Both candidates are returned so callers can measure the imbalance.
func ProRataLiquidity(amountA, amountB, reserveA, reserveB, totalLiquidity *big.Int) (minted, candidateA, candidateB *big.Int) {
	candidateA = new(big.Int).Mul(amountA, totalLiquidity)
	candidateA.Quo(candidateA, reserveA)
	candidateB = new(big.Int).Mul(amountB, totalLiquidity)
	candidateB.Quo(candidateB, reserveB)
	minted = candidateA
	if candidateB.Cmp(candidateA) < 0 {
		minted = candidateB
	}
	return new(big.Int).Set(minted), candidateA, candidateB
}

// DivergenceBps measures how far apart two LP-mint candidates are, in basis
// points of the larger one. Zero only when both candidates are zero; a
// single zero candidate is full divergence (10000).
func DivergenceBps(candidateA, candidateB *big.Int) *big.Int {
	hi, lo := candidateA, candidateB
	if hi.Cmp(lo) < 0 {
		hi, lo = lo, hi
	}
	if hi.Sign() == 0 {
		return big.NewInt(0)
	}
	diff := new(big.Int).Sub(hi, lo)
	diff.Mul(diff, bpsDenom)
	return diff.Quo(diff, hi)
}
