package schedule

import (
	"time"

	"dexledger/internal/models"
	dbconfig "dexledger/pkg/config"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm/clause"
)

// SnapshotPoolStats copies every pool's reserves into its rollup row. Trade
// counters are left to the event consumer; only the reserve columns and the
// snapshot timestamp are refreshed here.
func SnapshotPoolStats() error {
	var pools []models.LiquidityPool
	if err := dbconfig.DB.Find(&pools).Error; err != nil {
		log.Errorf("Failed to list pools for snapshot: %v", err)
		return err
	}

	recordedAt := time.Now()
	for _, pool := range pools {
		stat := models.PoolStat{
			PoolID:         pool.ID,
			ReserveA:       pool.ReserveA,
			ReserveB:       pool.ReserveB,
			TotalLiquidity: pool.TotalLiquidity,
			RecordedAt:     recordedAt,
		}
		err := dbconfig.DB.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "pool_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"reserve_a", "reserve_b", "total_liquidity", "recorded_at",
			}),
		}).Create(&stat).Error
		if err != nil {
			log.Errorf("Failed to snapshot pool %d: %v", pool.ID, err)
		}
	}

	log.Infof("Snapshotted %d pools", len(pools))
	return nil
}
