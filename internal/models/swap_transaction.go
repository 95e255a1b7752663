package models

import (
	"time"
)

// SwapTransaction is the immutable trade log row appended by every executed
// swap. Flash-loan payload swaps are logged with the loan's tx hash.
type SwapTransaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	PoolID    uint      `gorm:"not null;index" json:"pool_id"`
	TokenIn   string    `gorm:"size:16;not null" json:"token_in"`
	TokenOut  string    `gorm:"size:16;not null" json:"token_out"`
	AmountIn  BigInt    `json:"amount_in"`
	AmountOut BigInt    `json:"amount_out"`
	Fee       BigInt    `json:"fee"`
	TxHash    string    `gorm:"size:80;index" json:"tx_hash"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (SwapTransaction) TableName() string {
	return "swap_transactions"
}
