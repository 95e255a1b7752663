package models

import (
	"time"
)

// LiquidityPosition tracks one user's LP-token holding in one pool.
// Rows are deleted when the holding returns to zero.
type LiquidityPosition struct {
	ID              uint           `gorm:"primarykey" json:"id"`
	UserID          string         `gorm:"size:64;not null;uniqueIndex:idx_position_user_pool" json:"user_id"`
	PoolID          uint           `gorm:"not null;uniqueIndex:idx_position_user_pool" json:"pool_id"`
	LiquidityTokens BigInt         `json:"liquidity_tokens"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	Pool            *LiquidityPool `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

func (LiquidityPosition) TableName() string {
	return "liquidity_positions"
}
