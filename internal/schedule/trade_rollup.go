package schedule

import (
	"encoding/json"
	"errors"
	"math/big"

	"dexledger/internal/handlers/business"
	"dexledger/internal/models"
	dbconfig "dexledger/pkg/config"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyTradeEvent folds one consumed trade event into the pool's rollup
// counters. Events without a pool binding (flash loan summaries) are
// acknowledged without effect.
func ApplyTradeEvent(msg []byte) error {
	var ev business.TradeEvent
	if err := json.Unmarshal(msg, &ev); err != nil {
		log.Errorf("Failed to unmarshal trade event: %v", err)
		// Malformed payloads are dropped, not requeued.
		return nil
	}
	if ev.Type != business.EventSwap || ev.PoolID == 0 {
		return nil
	}

	amountIn, ok := new(big.Int).SetString(ev.AmountIn, 10)
	if !ok {
		log.Errorf("Invalid amount_in %q in trade event", ev.AmountIn)
		return nil
	}

	return dbconfig.DB.Transaction(func(tx *gorm.DB) error {
		var stat models.PoolStat
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pool_id = ?", ev.PoolID).
			First(&stat).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			stat = models.PoolStat{PoolID: ev.PoolID, RecordedAt: ev.Timestamp}
		} else if err != nil {
			return err
		}

		stat.SwapCount++
		stat.VolumeIn = models.NewBigInt(new(big.Int).Add(stat.VolumeIn.Big(), amountIn))
		return tx.Save(&stat).Error
	})
}
