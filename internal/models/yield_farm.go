package models

import (
	"time"
)

// YieldFarmingPool wraps one liquidity pool with a reward schedule.
// AccRewardPerShare is a fixed-point accumulator scaled by 10^18; it only
// ever increases while TotalStaked > 0.
type YieldFarmingPool struct {
	ID                uint           `gorm:"primarykey" json:"id"`
	PoolID            uint           `gorm:"not null;index" json:"pool_id"`
	RewardToken       string         `gorm:"size:16;not null" json:"reward_token"`
	RewardRate        BigInt         `json:"reward_rate"` // reward units per second
	TotalStaked       BigInt         `json:"total_staked"`
	AccRewardPerShare BigInt         `json:"acc_reward_per_share"`
	LockPeriodDays    int            `gorm:"default:0" json:"lock_period_days"`
	StartTime         time.Time      `json:"start_time"`
	EndTime           time.Time      `json:"end_time"`
	LastUpdated       time.Time      `json:"last_updated"`
	IsActive          bool           `gorm:"default:true" json:"is_active"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	Pool              *LiquidityPool `gorm:"foreignKey:PoolID" json:"pool,omitempty"`
}

func (YieldFarmingPool) TableName() string {
	return "yield_farming_pools"
}
