package business

import (
	"encoding/json"
	"time"

	"dexledger/internal/ws"
	"dexledger/pkg/config"

	log "github.com/sirupsen/logrus"
)

const (
	// TradeEventQueue is consumed by the worker to maintain pool rollups.
	TradeEventQueue = "dex_events"

	EventSwap         = "swap"
	EventAddLiquidity = "add_liquidity"
	EventFlashLoan    = "flash_loan"
)

// TradeEvent is the fan-out record emitted after a state-changing operation
// commits. Amounts are decimal strings.
type TradeEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"user_id"`
	PoolID    uint      `json:"pool_id,omitempty"`
	TokenIn   string    `json:"token_in,omitempty"`
	TokenOut  string    `json:"token_out,omitempty"`
	AmountIn  string    `json:"amount_in,omitempty"`
	AmountOut string    `json:"amount_out,omitempty"`
	TxHash    string    `json:"tx_hash,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishTradeEvent pushes the event to RabbitMQ (when configured) and to
// websocket subscribers. Fan-out is best effort and never blocks or fails
// the committed operation.
func PublishTradeEvent(ev TradeEvent) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = now()
	}

	go func() {
		payload, err := json.Marshal(ev)
		if err != nil {
			log.Errorf("Failed to marshal trade event: %v", err)
			return
		}

		ws.DefaultHub.Broadcast(payload)

		if config.RabbitMQ == nil {
			return
		}
		publisher, err := config.NewPublisher()
		if err != nil {
			log.Errorf("Failed to create trade event publisher: %v", err)
			return
		}
		defer publisher.Close()

		if err := publisher.Publish(TradeEventQueue, ev); err != nil {
			log.Errorf("Failed to publish trade event: %v", err)
		}
	}()
}
