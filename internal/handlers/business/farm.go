package business

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"dexledger/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// rewardPrecision scales the reward-per-share accumulator (10^18).
var rewardPrecision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// refreshFarm advances the reward-per-share accumulator to "at". Accrual is
// clamped to [StartTime, EndTime] and skipped entirely while nothing is
// staked, though LastUpdated always advances so an empty period never pays
// retroactively. Caller must hold the farm row lock.
func refreshFarm(farm *models.YieldFarmingPool, at time.Time) {
	from := farm.LastUpdated
	if from.Before(farm.StartTime) {
		from = farm.StartTime
	}
	to := at
	if to.After(farm.EndTime) {
		to = farm.EndTime
	}
	defer func() { farm.LastUpdated = at }()

	if !to.After(from) || farm.TotalStaked.Sign() == 0 {
		return
	}
	elapsed := big.NewInt(int64(to.Sub(from) / time.Second))
	delta := new(big.Int).Mul(elapsed, farm.RewardRate.Big())
	delta.Mul(delta, rewardPrecision)
	delta.Quo(delta, farm.TotalStaked.Big())
	farm.AccRewardPerShare = models.NewBigInt(new(big.Int).Add(farm.AccRewardPerShare.Big(), delta))
}

// accShare is the accumulator's current entitlement for a staked amount.
func accShare(staked, accRewardPerShare *big.Int) *big.Int {
	share := new(big.Int).Mul(staked, accRewardPerShare)
	return share.Quo(share, rewardPrecision)
}

// pendingReward is everything owed to a position at the farm's current
// accumulator value.
func pendingReward(farm *models.YieldFarmingPool, pos *models.StakingPosition) *big.Int {
	owed := accShare(pos.StakedAmount.Big(), farm.AccRewardPerShare.Big())
	owed.Sub(owed, pos.RewardDebt.Big())
	return owed.Add(owed, pos.PendingRewards.Big())
}

func saveFarmAccrual(tx *gorm.DB, farm *models.YieldFarmingPool) error {
	err := tx.Model(farm).Updates(map[string]interface{}{
		"acc_reward_per_share": farm.AccRewardPerShare,
		"total_staked":         farm.TotalStaked,
		"last_updated":         farm.LastUpdated,
	}).Error
	if err != nil {
		return Internal(err)
	}
	return nil
}

func lockFarm(tx *gorm.DB, farmID uint) (*models.YieldFarmingPool, error) {
	var farm models.YieldFarmingPool
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&farm, farmID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("Farm %d not found", farmID)
	}
	if err != nil {
		return nil, Internal(err)
	}
	return &farm, nil
}

func lockStakingPosition(tx *gorm.DB, userID string, farmID uint) (*models.StakingPosition, error) {
	var pos models.StakingPosition
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND farm_id = ?", userID, farmID).
		First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NotFound("No staking position in farm %d", farmID)
	}
	if err != nil {
		return nil, Internal(err)
	}
	return &pos, nil
}

type CreateFarmParams struct {
	PoolID         uint
	RewardToken    string
	RewardRate     *big.Int
	LockPeriodDays int
	DurationDays   int
}

// CreateFarm opens a yield farm over an existing liquidity pool.
func CreateFarm(db *gorm.DB, p CreateFarmParams) (*models.YieldFarmingPool, error) {
	rewardToken := strings.ToUpper(strings.TrimSpace(p.RewardToken))
	if rewardToken == "" {
		return nil, InvalidArgument("reward_token is required")
	}
	if p.RewardRate == nil || p.RewardRate.Sign() <= 0 {
		return nil, InvalidArgument("Reward rate must be positive")
	}
	if p.DurationDays <= 0 {
		return nil, InvalidArgument("Farm duration must be positive")
	}
	if p.LockPeriodDays < 0 {
		return nil, InvalidArgument("Lock period cannot be negative")
	}

	var pool models.LiquidityPool
	if err := db.First(&pool, p.PoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFound("Pool %d not found", p.PoolID)
		}
		return nil, Internal(err)
	}

	start := now()
	farm := models.YieldFarmingPool{
		PoolID:            pool.ID,
		RewardToken:       rewardToken,
		RewardRate:        models.NewBigInt(p.RewardRate),
		TotalStaked:       models.NewBigIntFromInt64(0),
		AccRewardPerShare: models.NewBigIntFromInt64(0),
		LockPeriodDays:    p.LockPeriodDays,
		StartTime:         start,
		EndTime:           start.AddDate(0, 0, p.DurationDays),
		LastUpdated:       start,
		IsActive:          true,
	}
	if err := db.Create(&farm).Error; err != nil {
		return nil, Internal(err)
	}

	log.WithFields(log.Fields{"farm": farm.ID, "pool": pool.ID, "reward": rewardToken}).
		Info("Yield farm created")
	return &farm, nil
}

// Stake moves LP tokens from the user's liquidity position into a staking
// position, folding any reward accrued so far into the pending bucket and
// re-checkpointing the reward debt.
func Stake(db *gorm.DB, userID string, farmID uint, amount *big.Int) error {
	if userID == "" {
		return InvalidArgument("user_id is required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return InvalidArgument("Stake amount must be positive")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		farm, err := lockFarm(tx, farmID)
		if err != nil {
			return err
		}
		if !farm.IsActive {
			return FailedPrecondition("Farm is not active")
		}
		if !now().Before(farm.EndTime) {
			return FailedPrecondition("Farm has ended")
		}
		refreshFarm(farm, now())

		if err := debitLiquidityPosition(tx, userID, farm.PoolID, amount); err != nil {
			return err
		}

		var pos models.StakingPosition
		err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND farm_id = ?", userID, farmID).
			First(&pos).Error
		fresh := errors.Is(err, gorm.ErrRecordNotFound)
		if err != nil && !fresh {
			return Internal(err)
		}

		if fresh {
			pos = models.StakingPosition{UserID: userID, FarmID: farmID}
		} else {
			// Fold accrued reward before the principal changes.
			earned := accShare(pos.StakedAmount.Big(), farm.AccRewardPerShare.Big())
			earned.Sub(earned, pos.RewardDebt.Big())
			pos.PendingRewards = models.NewBigInt(new(big.Int).Add(pos.PendingRewards.Big(), earned))
		}

		staked := new(big.Int).Add(pos.StakedAmount.Big(), amount)
		pos.StakedAmount = models.NewBigInt(staked)
		pos.RewardDebt = models.NewBigInt(accShare(staked, farm.AccRewardPerShare.Big()))
		if farm.LockPeriodDays > 0 {
			until := now().AddDate(0, 0, farm.LockPeriodDays)
			pos.LockedUntil = &until
		}
		if err := tx.Save(&pos).Error; err != nil {
			return Internal(err)
		}

		farm.TotalStaked = models.NewBigInt(new(big.Int).Add(farm.TotalStaked.Big(), amount))
		return saveFarmAccrual(tx, farm)
	})
}

// Unstake settles accrued reward, returns LP tokens to the liquidity
// position, and deletes the staking position when it empties. An unexpired
// time lock rejects the call.
func Unstake(db *gorm.DB, userID string, farmID uint, amount *big.Int) (*big.Int, error) {
	if userID == "" {
		return nil, InvalidArgument("user_id is required")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, InvalidArgument("Unstake amount must be positive")
	}

	claimed := big.NewInt(0)
	err := db.Transaction(func(tx *gorm.DB) error {
		farm, err := lockFarm(tx, farmID)
		if err != nil {
			return err
		}
		pos, err := lockStakingPosition(tx, userID, farmID)
		if err != nil {
			return err
		}
		if pos.LockedUntil != nil && now().Before(*pos.LockedUntil) {
			return FailedPrecondition("Stake is time-locked until %s",
				pos.LockedUntil.UTC().Format(time.RFC3339))
		}
		if pos.StakedAmount.Cmp(amount) < 0 {
			return FailedPrecondition("Insufficient staked amount")
		}
		refreshFarm(farm, now())

		owed := pendingReward(farm, pos)
		if owed.Sign() > 0 {
			if err := CreditBalance(tx, userID, farm.RewardToken, owed); err != nil {
				return err
			}
			claimed = owed
		}

		if err := creditLiquidityPosition(tx, userID, farm.PoolID, amount); err != nil {
			return err
		}

		remaining := new(big.Int).Sub(pos.StakedAmount.Big(), amount)
		if remaining.Sign() == 0 {
			if err := tx.Delete(pos).Error; err != nil {
				return Internal(err)
			}
		} else {
			updates := map[string]interface{}{
				"staked_amount":   models.NewBigInt(remaining),
				"reward_debt":     models.NewBigInt(accShare(remaining, farm.AccRewardPerShare.Big())),
				"pending_rewards": models.NewBigIntFromInt64(0),
			}
			if err := tx.Model(pos).Updates(updates).Error; err != nil {
				return Internal(err)
			}
		}

		farm.TotalStaked = models.NewBigInt(new(big.Int).Sub(farm.TotalStaked.Big(), amount))
		return saveFarmAccrual(tx, farm)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// ClaimRewards pays out accrued reward without touching the staked
// principal.
func ClaimRewards(db *gorm.DB, userID string, farmID uint) (*big.Int, error) {
	if userID == "" {
		return nil, InvalidArgument("user_id is required")
	}

	claimed := big.NewInt(0)
	err := db.Transaction(func(tx *gorm.DB) error {
		farm, err := lockFarm(tx, farmID)
		if err != nil {
			return err
		}
		pos, err := lockStakingPosition(tx, userID, farmID)
		if err != nil {
			return err
		}
		refreshFarm(farm, now())

		owed := pendingReward(farm, pos)
		if owed.Sign() <= 0 {
			return FailedPrecondition("No rewards to claim")
		}
		if err := CreditBalance(tx, userID, farm.RewardToken, owed); err != nil {
			return err
		}
		claimed = owed

		updates := map[string]interface{}{
			"reward_debt":     models.NewBigInt(accShare(pos.StakedAmount.Big(), farm.AccRewardPerShare.Big())),
			"pending_rewards": models.NewBigIntFromInt64(0),
		}
		if err := tx.Model(pos).Updates(updates).Error; err != nil {
			return Internal(err)
		}
		return saveFarmAccrual(tx, farm)
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"user": userID, "farm": farmID, "amount": claimed.String()}).
		Info("Farm rewards claimed")
	return claimed, nil
}

// RefreshFarm advances one farm's accumulator; the worker calls this on a
// schedule so idle farms do not drift far behind wall-clock accrual.
func RefreshFarm(db *gorm.DB, farmID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		farm, err := lockFarm(tx, farmID)
		if err != nil {
			return err
		}
		refreshFarm(farm, now())
		return saveFarmAccrual(tx, farm)
	})
}

// ListFarms returns all farms with their pools.
func ListFarms(db *gorm.DB) ([]models.YieldFarmingPool, error) {
	var farms []models.YieldFarmingPool
	if err := db.Preload("Pool").Order("id").Find(&farms).Error; err != nil {
		return nil, Internal(err)
	}
	return farms, nil
}

// StakingPositionInfo augments a staking position with the reward claimable
// right now, computed against a read-only copy of the farm accumulator.
type StakingPositionInfo struct {
	models.StakingPosition
	ClaimableRewards models.BigInt `json:"claimable_rewards"`
}

// ListStakingPositions returns all staking positions for a user.
func ListStakingPositions(db *gorm.DB, userID string) ([]StakingPositionInfo, error) {
	var positions []models.StakingPosition
	if err := db.Preload("Farm").Where("user_id = ?", userID).Order("farm_id").Find(&positions).Error; err != nil {
		return nil, Internal(err)
	}
	infos := make([]StakingPositionInfo, 0, len(positions))
	for _, pos := range positions {
		info := StakingPositionInfo{StakingPosition: pos}
		if pos.Farm != nil {
			farm := *pos.Farm
			refreshFarm(&farm, now())
			info.ClaimableRewards = models.NewBigInt(pendingReward(&farm, &pos))
		}
		infos = append(infos, info)
	}
	return infos, nil
}
