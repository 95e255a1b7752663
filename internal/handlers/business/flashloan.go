package business

import (
	"math/big"
	"sort"
	"strings"

	"dexledger/internal/models"
	"dexledger/pkg/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlashLoanOperation is one payload swap executed with borrowed funds.
type FlashLoanOperation struct {
	TokenIn  string
	TokenOut string
	AmountIn *big.Int
}

type FlashLoanParams struct {
	UserID     string
	Token      string
	Amount     *big.Int
	Operations []FlashLoanOperation
}

type FlashLoanResult struct {
	TxHash string                  `json:"tx_hash"`
	Amount models.BigInt           `json:"amount"`
	Fee    models.BigInt           `json:"fee"`
	Profit models.BigInt           `json:"profit"`
	Record *models.FlashLoanRecord `json:"record"`
}

// flashLoanFee truncates amount*feeBps/10000, same rounding as swap fees.
func flashLoanFee(amount *big.Int) *big.Int {
	fee := new(big.Int).Mul(amount, big.NewInt(FlashLoanFeeBps()))
	return fee.Quo(fee, big.NewInt(10000))
}

// acquireFlashLoanLock inserts the per-user reentrancy guard. Expired rows
// from a crashed run are swept first; the unique index on user_id turns a
// concurrent or nested loan into a precondition failure.
func acquireFlashLoanLock(tx *gorm.DB, userID string) error {
	err := tx.Where("user_id = ? AND expires_at <= ?", userID, now()).
		Delete(&models.FlashLoanLock{}).Error
	if err != nil {
		return Internal(err)
	}
	lock := models.FlashLoanLock{UserID: userID, ExpiresAt: now().Add(FlashLoanLockTTL())}
	if err := tx.Create(&lock).Error; err != nil {
		return FailedPrecondition("Flash loan already in progress for user %s", userID)
	}
	return nil
}

// tokenLiquidity sums a token's reserves across every pool holding it,
// locking those pools for the rest of the transaction.
func tokenLiquidity(tx *gorm.DB, token string) (*big.Int, error) {
	var pools []models.LiquidityPool
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("token_a = ? OR token_b = ?", token, token).
		Order("id").
		Find(&pools).Error
	if err != nil {
		return nil, Internal(err)
	}
	total := big.NewInt(0)
	for i := range pools {
		if pools[i].TokenA == token {
			total.Add(total, pools[i].ReserveA.Big())
		} else {
			total.Add(total, pools[i].ReserveB.Big())
		}
	}
	return total, nil
}

// virtualBalances tracks per-token holdings during a flash loan. Each ledger
// row is locked and read once on first touch and written back only at
// settlement, so a failed loan leaves no balance trace and concurrent
// ledger writes for the user serialize against the loan.
type virtualBalances struct {
	tx      *gorm.DB
	userID  string
	held    map[string]*big.Int
	initial map[string]*big.Int
}

func (v *virtualBalances) get(token string) (*big.Int, error) {
	if bal, ok := v.held[token]; ok {
		return bal, nil
	}
	bal, err := lockedBalanceOf(v.tx, v.userID, token)
	if err != nil {
		return nil, err
	}
	v.initial[token] = new(big.Int).Set(bal)
	v.held[token] = bal
	return bal, nil
}

func (v *virtualBalances) add(token string, amount *big.Int) error {
	bal, err := v.get(token)
	if err != nil {
		return err
	}
	bal.Add(bal, amount)
	return nil
}

func (v *virtualBalances) sub(token string, amount *big.Int) error {
	bal, err := v.get(token)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return FailedPrecondition("Insufficient %s balance for flash loan operation", token)
	}
	bal.Sub(bal, amount)
	return nil
}

// ExecuteFlashLoan borrows against pool liquidity, runs the payload swaps,
// and commits only if the borrowed amount plus fee came back on top of the
// user's pre-loan balance. Any failure past validation rolls everything back
// and leaves a failed audit row.
func ExecuteFlashLoan(db *gorm.DB, p FlashLoanParams) (*FlashLoanResult, error) {
	if p.UserID == "" {
		return nil, InvalidArgument("user_id is required")
	}
	token := strings.ToUpper(strings.TrimSpace(p.Token))
	if token == "" {
		return nil, InvalidArgument("token is required")
	}
	if p.Amount == nil || p.Amount.Sign() <= 0 {
		return nil, InvalidArgument("Flash loan amount must be positive")
	}
	if max := FlashLoanMaxAmount(); p.Amount.Cmp(max) > 0 {
		return nil, InvalidArgument("Flash loan amount exceeds maximum of %s", max)
	}
	if len(p.Operations) == 0 {
		return nil, InvalidArgument("Flash loan requires at least one operation")
	}
	for _, op := range p.Operations {
		if op.AmountIn == nil || op.AmountIn.Sign() <= 0 {
			return nil, InvalidArgument("Operation amount must be positive")
		}
		if a, b, _ := normalizePair(op.TokenIn, op.TokenOut); a == b || a == "" || b == "" {
			return nil, InvalidArgument("Operation requires two distinct tokens")
		}
	}

	fee := flashLoanFee(p.Amount)
	txHash := newTxHash()
	result := &FlashLoanResult{TxHash: txHash, Amount: models.NewBigInt(p.Amount), Fee: models.NewBigInt(fee)}
	attempted := false
	repaid := big.NewInt(0)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := acquireFlashLoanLock(tx, p.UserID); err != nil {
			return err
		}
		available, err := tokenLiquidity(tx, token)
		if err != nil {
			return err
		}
		if available.Cmp(p.Amount) < 0 {
			return FailedPrecondition("Insufficient pool liquidity for flash loan of %s %s", p.Amount, token)
		}
		attempted = true

		held := &virtualBalances{
			tx: tx, userID: p.UserID,
			held:    map[string]*big.Int{},
			initial: map[string]*big.Int{},
		}
		if err := held.add(token, p.Amount); err != nil {
			return err
		}

		for _, op := range p.Operations {
			tokenIn := strings.ToUpper(strings.TrimSpace(op.TokenIn))
			tokenOut := strings.ToUpper(strings.TrimSpace(op.TokenOut))
			if err := held.sub(tokenIn, op.AmountIn); err != nil {
				return err
			}

			pool, err := poolForPair(tx, true, tokenIn, tokenOut)
			if err != nil {
				return err
			}
			reserveIn, reserveOut := orientReserves(pool, tokenIn)
			amountOut := utils.GetAmountOut(op.AmountIn, reserveIn, reserveOut, pool.FeeBps)
			if amountOut.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
				return FailedPrecondition("Insufficient pool liquidity for swap")
			}

			newIn := new(big.Int).Add(reserveIn, op.AmountIn)
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

			trade := models.SwapTransaction{
				UserID:    p.UserID,
				PoolID:    pool.ID,
				TokenIn:   tokenIn,
				TokenOut:  tokenOut,
				AmountIn:  models.NewBigInt(op.AmountIn),
				AmountOut: models.NewBigInt(amountOut),
				Fee:       models.NewBigInt(utils.SwapFee(op.AmountIn, pool.FeeBps)),
				TxHash:    txHash,
			}
			if err := tx.Create(&trade).Error; err != nil {
				return Internal(err)
			}
			if err := held.add(tokenOut, amountOut); err != nil {
				return err
			}
		}

		// Repayment: the operations must have returned principal plus fee
		// on top of whatever the user held before the loan.
		initial := held.initial[token]
		final := held.held[token]
		required := new(big.Int).Add(p.Amount, fee)
		returned := new(big.Int).Sub(final, initial)
		if returned.Sign() < 0 {
			returned.SetInt64(0)
		}
		repaid = returned
		if returned.Cmp(required) < 0 {
			return FailedPrecondition(
				"Flash loan not repaid. Required: %s, but only %s was returned", required, returned)
		}

		// Settlement: apply each touched token's virtual-vs-initial delta
		// to the ledger, with principal and fee deducted from the loan
		// token. Tokens settle in sorted order for a stable lock order.
		touched := make([]string, 0, len(held.held))
		for tok := range held.held {
			touched = append(touched, tok)
		}
		sort.Strings(touched)
		for _, tok := range touched {
			target := held.held[tok]
			if tok == token {
				target = new(big.Int).Sub(target, required)
			}
			delta := new(big.Int).Sub(target, held.initial[tok])
			switch {
			case delta.Sign() > 0:
				if err := CreditBalance(tx, p.UserID, tok, delta); err != nil {
					return err
				}
			case delta.Sign() < 0:
				if err := DebitBalance(tx, p.UserID, tok, delta.Neg(delta)); err != nil {
					return err
				}
			}
		}
		result.Profit = models.NewBigInt(new(big.Int).Sub(returned, required))

		record := models.FlashLoanRecord{
			UserID:       p.UserID,
			Token:        token,
			Amount:       models.NewBigInt(p.Amount),
			Fee:          models.NewBigInt(fee),
			RepaidAmount: models.NewBigInt(required),
			Status:       models.FlashLoanStatusCompleted,
			TxHash:       txHash,
		}
		if err := tx.Create(&record).Error; err != nil {
			return Internal(err)
		}
		result.Record = &record

		err = tx.Where("user_id = ?", p.UserID).Delete(&models.FlashLoanLock{}).Error
		if err != nil {
			return Internal(err)
		}
		return nil
	})
	if err != nil {
		if attempted {
			recordFailedFlashLoan(db, p.UserID, token, p.Amount, fee, repaid, txHash)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"user":   p.UserID,
		"token":  token,
		"amount": p.Amount.String(),
		"fee":    fee.String(),
		"profit": result.Profit.String(),
	}).Info("Flash loan completed")

	PublishTradeEvent(TradeEvent{
		Type:     EventFlashLoan,
		UserID:   p.UserID,
		TokenIn:  token,
		TokenOut: token,
		AmountIn: p.Amount.String(),
		TxHash:   txHash,
	})
	return result, nil
}

// recordFailedFlashLoan writes the audit row for a rolled-back loan in its
// own transaction. Best effort; the rollback itself already restored state.
func recordFailedFlashLoan(db *gorm.DB, userID, token string, amount, fee, repaid *big.Int, txHash string) {
	record := models.FlashLoanRecord{
		UserID:       userID,
		Token:        token,
		Amount:       models.NewBigInt(amount),
		Fee:          models.NewBigInt(fee),
		RepaidAmount: models.NewBigInt(repaid),
		Status:       models.FlashLoanStatusFailed,
		TxHash:       txHash,
	}
	if err := db.Create(&record).Error; err != nil {
		log.WithError(err).Warn("Failed to record flash loan failure")
	}
}

// ListFlashLoans returns a user's flash loan history, newest first.
func ListFlashLoans(db *gorm.DB, userID string) ([]models.FlashLoanRecord, error) {
	var records []models.FlashLoanRecord
	if err := db.Where("user_id = ?", userID).Order("id DESC").Find(&records).Error; err != nil {
		return nil, Internal(err)
	}
	return records, nil
}
