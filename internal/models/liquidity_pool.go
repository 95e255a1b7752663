package models

import (
	"time"
)

// LiquidityPool holds the reserves for one token pair. TokenA/TokenB are
// stored in lexicographic order so the unordered pair has a single row.
// reserve_a * reserve_b never decreases across a fee-bearing swap.
type LiquidityPool struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	TokenA         string    `gorm:"size:16;not null;uniqueIndex:idx_pool_pair" json:"token_a"`
	TokenB         string    `gorm:"size:16;not null;uniqueIndex:idx_pool_pair" json:"token_b"`
	ReserveA       BigInt    `json:"reserve_a"`
	ReserveB       BigInt    `json:"reserve_b"`
	TotalLiquidity BigInt    `json:"total_liquidity"`
	FeeBps         int64     `gorm:"default:30" json:"fee_bps"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (LiquidityPool) TableName() string {
	return "liquidity_pools"
}
