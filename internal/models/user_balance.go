package models

import (
	"time"
)

// UserBalance is the shared balance ledger row. The DEX core consumes it but
// does not own it; the surrounding explorer/wallet services read it too.
type UserBalance struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_user_token" json:"user_id"`
	Token     string    `gorm:"size:16;not null;uniqueIndex:idx_user_token" json:"token"`
	Amount    BigInt    `json:"amount"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (UserBalance) TableName() string {
	return "user_balances"
}
