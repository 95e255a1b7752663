package main

import (
	"os"

	"dexledger/internal/handlers/business"
	"dexledger/internal/schedule"
	"dexledger/pkg/config"

	"github.com/robfig/cron/v3"
	logrus "github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	// Initialize database
	config.InitDB()

	// Maintenance jobs
	c := cron.New()
	c.AddFunc("* * * * *", func() {
		if err := schedule.SweepExpiredFlashLoanLocks(); err != nil {
			logrus.Errorf("Lock sweep failed: %v", err)
		}
	})
	c.AddFunc("* * * * *", func() {
		if err := schedule.RefreshFarmAccumulators(); err != nil {
			logrus.Errorf("Farm refresh failed: %v", err)
		}
	})
	c.AddFunc("*/15 * * * *", func() {
		if err := schedule.SnapshotPoolStats(); err != nil {
			logrus.Errorf("Pool snapshot failed: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	// Trade event consumer (optional; rollups stall without RabbitMQ but
	// the maintenance jobs still run)
	if os.Getenv("RABBITMQ_HOST") != "" {
		config.InitRabbitMQ()
		defer config.RabbitMQ.Close()

		msgConsumer, err := config.NewConsumer(business.TradeEventQueue)
		if err != nil {
			logrus.Fatal("Failed to create consumer: ", err)
		}
		defer msgConsumer.Close()

		logrus.Info("Trade event worker started, waiting for messages...")
		if err := msgConsumer.Consume(schedule.ApplyTradeEvent); err != nil {
			logrus.Fatal("Failed to start consumer: ", err)
		}
	} else {
		logrus.Info("RabbitMQ not configured, running maintenance jobs only")
		select {}
	}
}
