package schedule

import (
	"time"

	"dexledger/internal/models"
	dbconfig "dexledger/pkg/config"

	log "github.com/sirupsen/logrus"
)

// SweepExpiredFlashLoanLocks deletes reentrancy guard rows whose TTL has
// passed. Locks normally die with their transaction; this catches rows
// orphaned by a crashed process.
func SweepExpiredFlashLoanLocks() error {
	result := dbconfig.DB.
		Where("expires_at <= ?", time.Now()).
		Delete(&models.FlashLoanLock{})
	if result.Error != nil {
		log.Errorf("Failed to sweep flash loan locks: %v", result.Error)
		return result.Error
	}
	if result.RowsAffected > 0 {
		log.Infof("Swept %d expired flash loan locks", result.RowsAffected)
	}
	return nil
}
