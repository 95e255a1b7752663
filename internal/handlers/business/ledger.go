package business

import (
	"errors"
	"math/big"

	"dexledger/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Balance ledger access. The ledger is owned by the surrounding wallet
// services; the core only performs atomic debits and credits inside the
// caller's transaction, with the row locked for update.

func lockBalance(tx *gorm.DB, userID, token string) (*models.UserBalance, error) {
	var bal models.UserBalance
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND token = ?", userID, token).
		First(&bal).Error
	if err != nil {
		return nil, err
	}
	return &bal, nil
}

// DebitBalance subtracts amount from the user's token balance. The caller
// must already be inside a transaction.
func DebitBalance(tx *gorm.DB, userID, token string, amount *big.Int) error {
	bal, err := lockBalance(tx, userID, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return FailedPrecondition("Insufficient %s balance", token)
	}
	if err != nil {
		return Internal(err)
	}
	if bal.Amount.Cmp(amount) < 0 {
		return FailedPrecondition("Insufficient %s balance", token)
	}
	remaining := new(big.Int).Sub(bal.Amount.Big(), amount)
	if err := tx.Model(bal).Update("amount", models.NewBigInt(remaining)).Error; err != nil {
		return Internal(err)
	}
	return nil
}

// CreditBalance adds amount to the user's token balance, creating the row on
// first touch. The caller must already be inside a transaction.
func CreditBalance(tx *gorm.DB, userID, token string, amount *big.Int) error {
	bal, err := lockBalance(tx, userID, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		bal = &models.UserBalance{
			UserID: userID,
			Token:  token,
			Amount: models.NewBigInt(amount),
		}
		if err := tx.Create(bal).Error; err != nil {
			return Internal(err)
		}
		return nil
	}
	if err != nil {
		return Internal(err)
	}
	total := new(big.Int).Add(bal.Amount.Big(), amount)
	if err := tx.Model(bal).Update("amount", models.NewBigInt(total)).Error; err != nil {
		return Internal(err)
	}
	return nil
}

// lockedBalanceOf reads a balance under a row lock so later writes in the
// same transaction serialize against concurrent ledger mutations; missing
// rows read as zero.
func lockedBalanceOf(tx *gorm.DB, userID, token string) (*big.Int, error) {
	bal, err := lockBalance(tx, userID, token)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, Internal(err)
	}
	return bal.Amount.Big(), nil
}

// balanceOf reads a balance without locking; missing rows read as zero.
func balanceOf(db *gorm.DB, userID, token string) (*big.Int, error) {
	var bal models.UserBalance
	err := db.Where("user_id = ? AND token = ?", userID, token).First(&bal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, Internal(err)
	}
	return bal.Amount.Big(), nil
}

// Deposit credits a user's balance in its own transaction. This is the
// faucet/ingest surface of the externally-owned ledger.
func Deposit(db *gorm.DB, userID, token string, amount *big.Int) error {
	if userID == "" || token == "" {
		return InvalidArgument("user_id and token are required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return InvalidArgument("Deposit amount must be positive")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		return CreditBalance(tx, userID, token, amount)
	})
}

// GetBalances lists all token balances for a user.
func GetBalances(db *gorm.DB, userID string) ([]models.UserBalance, error) {
	var balances []models.UserBalance
	if err := db.Where("user_id = ?", userID).Order("token").Find(&balances).Error; err != nil {
		return nil, Internal(err)
	}
	return balances, nil
}
