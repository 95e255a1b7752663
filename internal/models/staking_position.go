package models

import (
	"time"
)

// StakingPosition is one user's stake in one farm. RewardDebt is the
// accumulator checkpoint from the last interaction; PendingRewards holds
// reward folded in at a checkpoint but not yet paid out. Rows are deleted
// when StakedAmount returns to zero.
type StakingPosition struct {
	ID             uint              `gorm:"primarykey" json:"id"`
	UserID         string            `gorm:"size:64;not null;uniqueIndex:idx_stake_user_farm" json:"user_id"`
	FarmID         uint              `gorm:"not null;uniqueIndex:idx_stake_user_farm" json:"farm_id"`
	StakedAmount   BigInt            `json:"staked_amount"`
	RewardDebt     BigInt            `json:"reward_debt"`
	PendingRewards BigInt            `json:"pending_rewards"`
	LockedUntil    *time.Time        `json:"locked_until,omitempty"`
	CreatedAt      time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
	Farm           *YieldFarmingPool `gorm:"foreignKey:FarmID" json:"farm,omitempty"`
}

func (StakingPosition) TableName() string {
	return "staking_positions"
}
