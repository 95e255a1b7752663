package business

import (
	"errors"
	"math/big"
	"strings"

	"dexledger/internal/models"
	"dexledger/pkg/utils"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// normalizePair canonicalizes an unordered token pair: symbols are
// upper-cased and ordered lexicographically. swapped reports whether the
// caller's (first, second) orientation was reversed.
func normalizePair(first, second string) (tokenA, tokenB string, swapped bool) {
	tokenA = strings.ToUpper(strings.TrimSpace(first))
	tokenB = strings.ToUpper(strings.TrimSpace(second))
	if tokenA > tokenB {
		return tokenB, tokenA, true
	}
	return tokenA, tokenB, false
}

func poolForPair(db *gorm.DB, lock bool, tokenX, tokenY string) (*models.LiquidityPool, error) {
	a, b, _ := normalizePair(tokenX, tokenY)
	var pool models.LiquidityPool
	q := db
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("token_a = ? AND token_b = ?", a, b).First(&pool).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, FailedPrecondition("No liquidity pool for pair %s/%s", a, b)
	}
	if err != nil {
		return nil, Internal(err)
	}
	return &pool, nil
}

// AddLiquidityParams is a dual-sided deposit request. Amounts are in the
// tokens' smallest units. SlippageToleranceBps bounds how unbalanced the
// deposit may be relative to the pool ratio; zero means the default.
type AddLiquidityParams struct {
	UserID               string
	TokenA               string
	TokenB               string
	AmountA              *big.Int
	AmountB              *big.Int
	SlippageToleranceBps int64
}

type AddLiquidityResult struct {
	PoolID                uint          `json:"pool_id"`
	LiquidityTokensMinted models.BigInt `json:"liquidity_tokens_minted"`
}

// AddLiquidity deposits both tokens into the pair's pool, creating the pool
// on first deposit. The first deposit mints floor(sqrt(amountA*amountB)) LP
// tokens; later deposits mint the minimum of the two per-side candidates.
func AddLiquidity(db *gorm.DB, p AddLiquidityParams) (*AddLiquidityResult, error) {
	if p.UserID == "" {
		return nil, InvalidArgument("user_id is required")
	}
	tokenA, tokenB, swapped := normalizePair(p.TokenA, p.TokenB)
	if tokenA == "" || tokenB == "" {
		return nil, InvalidArgument("Both token symbols are required")
	}
	if tokenA == tokenB {
		return nil, InvalidArgument("Cannot pool a token against itself")
	}
	amountA, amountB := p.AmountA, p.AmountB
	if swapped {
		amountA, amountB = amountB, amountA
	}
	if amountA == nil || amountB == nil || amountA.Sign() <= 0 || amountB.Sign() <= 0 {
		return nil, InvalidArgument("Deposit amounts must be positive")
	}
	tolerance := p.SlippageToleranceBps
	if tolerance <= 0 {
		tolerance = DefaultSlippageBps()
	}

	var result AddLiquidityResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var pool models.LiquidityPool
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("token_a = ? AND token_b = ?", tokenA, tokenB).
			First(&pool).Error

		var minted *big.Int
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			minted = utils.InitialLiquidity(amountA, amountB)
			if minted.Sign() == 0 {
				return FailedPrecondition("Deposit too small to mint liquidity")
			}
			pool = models.LiquidityPool{
				TokenA:         tokenA,
				TokenB:         tokenB,
				ReserveA:       models.NewBigInt(amountA),
				ReserveB:       models.NewBigInt(amountB),
				TotalLiquidity: models.NewBigInt(minted),
				FeeBps:         SwapFeeBps(),
			}
			if err := tx.Create(&pool).Error; err != nil {
				return Internal(err)
			}
		case err != nil:
			return Internal(err)
		default:
			var candA, candB *big.Int
			minted, candA, candB = utils.ProRataLiquidity(
				amountA, amountB, pool.ReserveA.Big(), pool.ReserveB.Big(), pool.TotalLiquidity.Big())
			if minted.Sign() == 0 {
				return FailedPrecondition("Deposit too small to mint liquidity")
			}
			if utils.DivergenceBps(candA, candB).Cmp(big.NewInt(tolerance)) > 0 {
				return FailedPrecondition(
					"Unbalanced deposit: pool ratio deviation exceeds %d bps tolerance", tolerance)
			}
			updates := map[string]interface{}{
				"reserve_a":       models.NewBigInt(new(big.Int).Add(pool.ReserveA.Big(), amountA)),
				"reserve_b":       models.NewBigInt(new(big.Int).Add(pool.ReserveB.Big(), amountB)),
				"total_liquidity": models.NewBigInt(new(big.Int).Add(pool.TotalLiquidity.Big(), minted)),
			}
			if err := tx.Model(&pool).Updates(updates).Error; err != nil {
				return Internal(err)
			}
		}

		if err := DebitBalance(tx, p.UserID, tokenA, amountA); err != nil {
			return err
		}
		if err := DebitBalance(tx, p.UserID, tokenB, amountB); err != nil {
			return err
		}
		if err := creditLiquidityPosition(tx, p.UserID, pool.ID, minted); err != nil {
			return err
		}

		result = AddLiquidityResult{PoolID: pool.ID, LiquidityTokensMinted: models.NewBigInt(minted)}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user": p.UserID,
		"pool": result.PoolID,
		"lp":   result.LiquidityTokensMinted.String(),
	}).Info("Liquidity added")

	PublishTradeEvent(TradeEvent{
		Type:     EventAddLiquidity,
		UserID:   p.UserID,
		PoolID:   result.PoolID,
		TokenIn:  tokenA,
		TokenOut: tokenB,
		AmountIn: amountA.String(),
	})
	return &result, nil
}

// creditLiquidityPosition adds LP tokens to the user's position for the
// pool, creating the row on first deposit.
func creditLiquidityPosition(tx *gorm.DB, userID string, poolID uint, amount *big.Int) error {
	var pos models.LiquidityPosition
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND pool_id = ?", userID, poolID).
		First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pos = models.LiquidityPosition{
			UserID:          userID,
			PoolID:          poolID,
			LiquidityTokens: models.NewBigInt(amount),
		}
		if err := tx.Create(&pos).Error; err != nil {
			return Internal(err)
		}
		return nil
	}
	if err != nil {
		return Internal(err)
	}
	total := new(big.Int).Add(pos.LiquidityTokens.Big(), amount)
	if err := tx.Model(&pos).Update("liquidity_tokens", models.NewBigInt(total)).Error; err != nil {
		return Internal(err)
	}
	return nil
}

// debitLiquidityPosition removes LP tokens from the user's position,
// deleting the row when it reaches zero.
func debitLiquidityPosition(tx *gorm.DB, userID string, poolID uint, amount *big.Int) error {
	var pos models.LiquidityPosition
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND pool_id = ?", userID, poolID).
		First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FailedPrecondition("Insufficient LP tokens")
	}
	if err != nil {
		return Internal(err)
	}
	if pos.LiquidityTokens.Cmp(amount) < 0 {
		return FailedPrecondition("Insufficient LP tokens")
	}
	remaining := new(big.Int).Sub(pos.LiquidityTokens.Big(), amount)
	if remaining.Sign() == 0 {
		if err := tx.Delete(&pos).Error; err != nil {
			return Internal(err)
		}
		return nil
	}
	if err := tx.Model(&pos).Update("liquidity_tokens", models.NewBigInt(remaining)).Error; err != nil {
		return Internal(err)
	}
	return nil
}

// PoolInfo is the read model for pool listings.
type PoolInfo struct {
	models.LiquidityPool
	SpotPrice decimal.Decimal `json:"spot_price"`
}

// ListPools returns all pools with the informational B-per-A spot price.
func ListPools(db *gorm.DB) ([]PoolInfo, error) {
	var pools []models.LiquidityPool
	if err := db.Order("id").Find(&pools).Error; err != nil {
		return nil, Internal(err)
	}
	infos := make([]PoolInfo, 0, len(pools))
	for _, pool := range pools {
		info := PoolInfo{LiquidityPool: pool}
		if pool.ReserveA.Sign() > 0 {
			info.SpotPrice = decimal.NewFromBigInt(&pool.ReserveB.Int, 0).
				DivRound(decimal.NewFromBigInt(&pool.ReserveA.Int, 0), 18)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// PositionInfo is the read model for a user's liquidity positions; the share
// percentage is derived, never stored.
type PositionInfo struct {
	models.LiquidityPosition
	SharePercentage decimal.Decimal `json:"share_percentage"`
}

// ListPositions returns all liquidity positions for a user.
func ListPositions(db *gorm.DB, userID string) ([]PositionInfo, error) {
	var positions []models.LiquidityPosition
	if err := db.Preload("Pool").Where("user_id = ?", userID).Order("pool_id").Find(&positions).Error; err != nil {
		return nil, Internal(err)
	}
	infos := make([]PositionInfo, 0, len(positions))
	for _, pos := range positions {
		info := PositionInfo{LiquidityPosition: pos}
		if pos.Pool != nil && pos.Pool.TotalLiquidity.Sign() > 0 {
			info.SharePercentage = decimal.NewFromBigInt(&pos.LiquidityTokens.Int, 2).
				DivRound(decimal.NewFromBigInt(&pos.Pool.TotalLiquidity.Int, 0), 6)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
