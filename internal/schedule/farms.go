package schedule

import (
	"dexledger/internal/handlers/business"
	"dexledger/internal/models"
	dbconfig "dexledger/pkg/config"

	log "github.com/sirupsen/logrus"
)

// RefreshFarmAccumulators advances every active farm's reward accumulator.
// Stake, unstake and claim already refresh on their own; this keeps idle
// farms' last_updated close to wall clock so listings show fresh numbers.
func RefreshFarmAccumulators() error {
	var farmIDs []uint
	err := dbconfig.DB.Model(&models.YieldFarmingPool{}).
		Where("is_active = ?", true).
		Pluck("id", &farmIDs).Error
	if err != nil {
		log.Errorf("Failed to list active farms: %v", err)
		return err
	}

	for _, id := range farmIDs {
		if err := business.RefreshFarm(dbconfig.DB, id); err != nil {
			log.Errorf("Failed to refresh farm %d: %v", id, err)
		}
	}
	return nil
}
