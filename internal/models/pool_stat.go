package models

import (
	"time"
)

// PoolStat is a per-pool rollup maintained outside the request path: the
// worker's event consumer increments the trade counters and the snapshot job
// refreshes the reserve columns.
type PoolStat struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	PoolID         uint      `gorm:"not null;uniqueIndex" json:"pool_id"`
	ReserveA       BigInt    `json:"reserve_a"`
	ReserveB       BigInt    `json:"reserve_b"`
	TotalLiquidity BigInt    `json:"total_liquidity"`
	SwapCount      int64     `gorm:"default:0" json:"swap_count"`
	VolumeIn       BigInt    `json:"volume_in"`
	RecordedAt     time.Time `json:"recorded_at"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (PoolStat) TableName() string {
	return "pool_stats"
}
