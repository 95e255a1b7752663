package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"dexledger/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB() {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get database instance:", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db

	// Auto migrate all models
	err = DB.AutoMigrate(
		&models.UserBalance{},
		&models.LiquidityPool{},
		&models.LiquidityPosition{},
		&models.YieldFarmingPool{},
		&models.StakingPosition{},
		&models.FlashLoanRecord{},
		&models.FlashLoanLock{},
		&models.SwapTransaction{},
		&models.PoolStat{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
}
