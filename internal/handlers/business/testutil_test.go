package business

import (
	"context"
	"math/big"
	"testing"
	"time"

	"dexledger/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB starts a PostgreSQL container and migrates the schema.
// Row locking in the engines requires a real postgres instance.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	db, err := gorm.Open(gormpg.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open database")

	require.NoError(t, db.AutoMigrate(
		&models.UserBalance{},
		&models.LiquidityPool{},
		&models.LiquidityPosition{},
		&models.YieldFarmingPool{},
		&models.StakingPosition{},
		&models.FlashLoanRecord{},
		&models.FlashLoanLock{},
		&models.SwapTransaction{},
		&models.PoolStat{},
	))

	return db
}

// freezeTime pins the engine clock to a controllable instant. Advance it by
// writing through the returned pointer.
func freezeTime(t *testing.T, start time.Time) *time.Time {
	t.Helper()
	current := start
	prev := now
	now = func() time.Time { return current }
	t.Cleanup(func() { now = prev })
	return &current
}

func bi(x int64) *big.Int {
	return big.NewInt(x)
}

func seedBalance(t *testing.T, db *gorm.DB, userID, token string, amount int64) {
	t.Helper()
	require.NoError(t, Deposit(db, userID, token, bi(amount)))
}

func mustBalance(t *testing.T, db *gorm.DB, userID, token string) *big.Int {
	t.Helper()
	bal, err := balanceOf(db, userID, token)
	require.NoError(t, err)
	return bal
}

// seedPool deposits both sides of a fresh pool for the given user and
// returns the pool ID and minted LP tokens.
func seedPool(t *testing.T, db *gorm.DB, userID, tokenA, tokenB string, amountA, amountB int64) (uint, *big.Int) {
	t.Helper()
	seedBalance(t, db, userID, tokenA, amountA)
	seedBalance(t, db, userID, tokenB, amountB)
	result, err := AddLiquidity(db, AddLiquidityParams{
		UserID:  userID,
		TokenA:  tokenA,
		TokenB:  tokenB,
		AmountA: bi(amountA),
		AmountB: bi(amountB),
	})
	require.NoError(t, err)
	return result.PoolID, result.LiquidityTokensMinted.Big()
}

// requireBusinessError asserts err carries the given code.
func requireBusinessError(t *testing.T, err error, code ErrorCode) {
	t.Helper()
	require.Error(t, err)
	be, ok := AsError(err)
	require.True(t, ok, "expected business error, got %v", err)
	require.Equal(t, code, be.Code, "unexpected error code: %v", err)
}
