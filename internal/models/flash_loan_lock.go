package models

import (
	"time"
)

// FlashLoanLock is the persisted per-user reentrancy guard. It lives for the
// duration of one flash-loan transaction; the expiry lets a crashed
// transaction stop blocking future loans. The worker sweeps expired rows.
type FlashLoanLock struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (FlashLoanLock) TableName() string {
	return "flash_loan_locks"
}
