package business

import (
	"math/big"
	"os"
	"strconv"
	"time"
)

// Clock hook so engine tests can control accrual time.
var now = time.Now

func envInt64(name string, def int64) int64 {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

// SwapFeeBps is the fee applied to swaps on newly created pools.
func SwapFeeBps() int64 {
	return envInt64("DEX_SWAP_FEE_BPS", 30)
}

// FlashLoanFeeBps is the premium charged on the borrowed amount.
func FlashLoanFeeBps() int64 {
	return envInt64("DEX_FLASH_LOAN_FEE_BPS", 9)
}

// FlashLoanMaxAmount caps a single loan. Default 10^24 smallest units.
func FlashLoanMaxAmount() *big.Int {
	if v := os.Getenv("DEX_FLASH_LOAN_MAX"); v != "" {
		if n, ok := new(big.Int).SetString(v, 10); ok {
			return n
		}
	}
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(24), nil)
}

// FlashLoanLockTTL bounds how long a crashed loan can block a user.
func FlashLoanLockTTL() time.Duration {
	return time.Duration(envInt64("DEX_FLASH_LOAN_LOCK_TTL_SECONDS", 60)) * time.Second
}

// DefaultSlippageBps is applied when a request leaves tolerance unset.
func DefaultSlippageBps() int64 {
	return envInt64("DEX_DEFAULT_SLIPPAGE_BPS", 50)
}
