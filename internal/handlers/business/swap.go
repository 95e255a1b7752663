package business

import (
	"math/big"
	"strings"

	"dexledger/internal/models"
	"dexledger/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// orientReserves maps a pool's canonical (A, B) reserves onto the swap's
// in/out direction.
func orientReserves(pool *models.LiquidityPool, tokenIn string) (reserveIn, reserveOut *big.Int) {
	if strings.ToUpper(strings.TrimSpace(tokenIn)) == pool.TokenA {
		return pool.ReserveA.Big(), pool.ReserveB.Big()
	}
	return pool.ReserveB.Big(), pool.ReserveA.Big()
}

func newTxHash() string {
	return "0x" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// priceImpactPercent renders basis points as a display percentage.
func priceImpactPercent(bps *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(bps, -2)
}

type QuoteResult struct {
	AmountOut     models.BigInt   `json:"amount_out"`
	PriceImpact   decimal.Decimal `json:"price_impact"`
	Fee           models.BigInt   `json:"fee"`
	MinimumOutput models.BigInt   `json:"minimum_output"`
}

// Quote prices a swap without touching state.
func Quote(db *gorm.DB, tokenIn, tokenOut string, amountIn *big.Int) (*QuoteResult, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, InvalidArgument("Swap amount must be positive")
	}
	if a, b, _ := normalizePair(tokenIn, tokenOut); a == b || a == "" || b == "" {
		return nil, InvalidArgument("Swap requires two distinct tokens")
	}
	pool, err := poolForPair(db, false, tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	reserveIn, reserveOut := orientReserves(pool, tokenIn)
	amountOut := utils.GetAmountOut(amountIn, reserveIn, reserveOut, pool.FeeBps)
	if amountOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil, FailedPrecondition("Insufficient pool liquidity for swap")
	}
	return &QuoteResult{
		AmountOut:     models.NewBigInt(amountOut),
		PriceImpact:   priceImpactPercent(utils.PriceImpactBps(amountIn, reserveIn)),
		Fee:           models.NewBigInt(utils.SwapFee(amountIn, pool.FeeBps)),
		MinimumOutput: models.NewBigInt(utils.MinimumOutput(amountOut, DefaultSlippageBps())),
	}, nil
}

type SwapParams struct {
	UserID           string
	TokenIn          string
	TokenOut         string
	AmountIn         *big.Int
	MinimumAmountOut *big.Int
}

type SwapResult struct {
	AmountOut   models.BigInt   `json:"amount_out"`
	PriceImpact decimal.Decimal `json:"price_impact"`
	TxHash      string          `json:"tx_hash"`
}

// Swap executes a token swap against the pair's pool: fee-adjusted
// constant-product pricing, slippage protection, reserve and balance moves,
// and an immutable trade-log row, all inside one transaction.
func Swap(db *gorm.DB, p SwapParams) (*SwapResult, error) {
	if p.UserID == "" {
		return nil, InvalidArgument("user_id is required")
	}
	if p.AmountIn == nil || p.AmountIn.Sign() <= 0 {
		return nil, InvalidArgument("Swap amount must be positive")
	}
	tokenIn := strings.ToUpper(strings.TrimSpace(p.TokenIn))
	tokenOut := strings.ToUpper(strings.TrimSpace(p.TokenOut))
	if tokenIn == "" || tokenOut == "" || tokenIn == tokenOut {
		return nil, InvalidArgument("Swap requires two distinct tokens")
	}

	var result SwapResult
	var poolID uint
	err := db.Transaction(func(tx *gorm.DB) error {
		pool, err := poolForPair(tx, true, tokenIn, tokenOut)
		if err != nil {
			return err
		}
		poolID = pool.ID

		reserveIn, reserveOut := orientReserves(pool, tokenIn)
		amountOut := utils.GetAmountOut(p.AmountIn, reserveIn, reserveOut, pool.FeeBps)
		if amountOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
			return FailedPrecondition("Insufficient pool liquidity for swap")
		}
		if p.MinimumAmountOut != nil && amountOut.Cmp(p.MinimumAmountOut) < 0 {
			return FailedPrecondition(
				"Slippage exceeded: output %s is below minimum %s", amountOut, p.MinimumAmountOut)
		}

		newIn := new(big.Int).Add(reserveIn, p.AmountIn)
		newOut := new(big.Int).Sub(reserveOut, amountOut)
		updates := map[string]interface{}{}
		if tokenIn == pool.TokenA {
			updates["reserve_a"] = models.NewBigInt(newIn)
			updates["reserve_b"] = models.NewBigInt(newOut)
		} else {
			updates["reserve_a"] = models.NewBigInt(newOut)
			updates["reserve_b"] = models.NewBigInt(newIn)
		}
		if err := tx.Model(pool).Updates(updates).Error; err != nil {
			return Internal(err)
		}

		if err := DebitBalance(tx, p.UserID, tokenIn, p.AmountIn); err != nil {
			return err
		}
		if err := CreditBalance(tx, p.UserID, tokenOut, amountOut); err != nil {
			return err
		}

		record := models.SwapTransaction{
			UserID:    p.UserID,
			PoolID:    pool.ID,
			TokenIn:   tokenIn,
			TokenOut:  tokenOut,
			AmountIn:  models.NewBigInt(p.AmountIn),
			AmountOut: models.NewBigInt(amountOut),
			Fee:       models.NewBigInt(utils.SwapFee(p.AmountIn, pool.FeeBps)),
			TxHash:    newTxHash(),
		}
		if err := tx.Create(&record).Error; err != nil {
			return Internal(err)
		}

		result = SwapResult{
			AmountOut:   models.NewBigInt(amountOut),
			PriceImpact: priceImpactPercent(utils.PriceImpactBps(p.AmountIn, reserveIn)),
			TxHash:      record.TxHash,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":       p.UserID,
		"pool":       poolID,
		"token_in":   tokenIn,
		"token_out":  tokenOut,
		"amount_in":  p.AmountIn.String(),
		"amount_out": result.AmountOut.String(),
	}).Info("Swap executed")

	PublishTradeEvent(TradeEvent{
		Type:      EventSwap,
		UserID:    p.UserID,
		PoolID:    poolID,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  p.AmountIn.String(),
		AmountOut: result.AmountOut.String(),
		TxHash:    result.TxHash,
	})
	return &result, nil
}
