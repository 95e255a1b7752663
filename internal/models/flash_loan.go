package models

import (
	"time"
)

const (
	FlashLoanStatusCompleted = "completed"
	FlashLoanStatusFailed    = "failed"
)

// FlashLoanRecord is an append-only audit row. A completed row is written
// only inside the transaction that proved repayment; a failed row is written
// after that transaction rolled back.
type FlashLoanRecord struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	UserID       string    `gorm:"size:64;not null;index" json:"user_id"`
	Token        string    `gorm:"size:16;not null" json:"token"`
	Amount       BigInt    `json:"amount"`
	Fee          BigInt    `json:"fee"`
	RepaidAmount BigInt    `json:"repaid_amount"`
	Status       string    `gorm:"size:16;not null" json:"status"`
	TxHash       string    `gorm:"size:80;index" json:"tx_hash"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (FlashLoanRecord) TableName() string {
	return "flash_loans"
}
