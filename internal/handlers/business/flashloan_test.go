package business

import (
	"testing"
	"time"

	"dexledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteFlashLoan(t *testing.T) {
	db := setupTestDB(t)

	// Three pools whose prices disagree enough that a USDC -> ETH -> DAI ->
	// USDC cycle is profitable.
	seedPool(t, db, "lp", "ETH", "USDC", 1000, 1000)
	seedPool(t, db, "lp", "ETH", "DAI", 1000, 5000)
	seedPool(t, db, "lp", "DAI", "USDC", 5000, 2000)

	t.Run("profitable cycle settles the profit", func(t *testing.T) {
		result, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "arb",
			Token:  "USDC",
			Amount: bi(100),
			Operations: []FlashLoanOperation{
				{TokenIn: "USDC", TokenOut: "ETH", AmountIn: bi(100)},
				{TokenIn: "ETH", TokenOut: "DAI", AmountIn: bi(90)},
				{TokenIn: "DAI", TokenOut: "USDC", AmountIn: bi(408)},
			},
		})
		require.NoError(t, err)

		// 100 USDC -> 90 ETH -> 408 DAI -> 150 USDC; fee truncates to 0.
		assert.Equal(t, "0", result.Fee.String())
		assert.Equal(t, "50", result.Profit.String())
		assert.Equal(t, "50", mustBalance(t, db, "arb", "USDC").String())
		assert.Equal(t, "0", mustBalance(t, db, "arb", "ETH").String())
		assert.Equal(t, "0", mustBalance(t, db, "arb", "DAI").String())

		var record models.FlashLoanRecord
		require.NoError(t, db.Where("user_id = ?", "arb").First(&record).Error)
		assert.Equal(t, models.FlashLoanStatusCompleted, record.Status)
		assert.Equal(t, "100", record.Amount.String())
		assert.Equal(t, "100", record.RepaidAmount.String())

		// Payload swaps hit the trade log under the loan's tx hash.
		var trades int64
		require.NoError(t, db.Model(&models.SwapTransaction{}).
			Where("tx_hash = ?", result.TxHash).Count(&trades).Error)
		assert.EqualValues(t, 3, trades)

		// The reentrancy lock is released on commit.
		var locks int64
		require.NoError(t, db.Model(&models.FlashLoanLock{}).
			Where("user_id = ?", "arb").Count(&locks).Error)
		assert.Zero(t, locks)
	})

	t.Run("unrepaid loan rolls back everything", func(t *testing.T) {
		var before models.LiquidityPool
		require.NoError(t, db.Where("token_a = ? AND token_b = ?", "ETH", "USDC").
			First(&before).Error)

		_, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "greedy",
			Token:  "USDC",
			Amount: bi(100),
			Operations: []FlashLoanOperation{
				{TokenIn: "USDC", TokenOut: "ETH", AmountIn: bi(100)},
			},
		})
		requireBusinessError(t, err, CodeFailedPrecondition)

		// Reserves, balances and the lock were all rolled back.
		var after models.LiquidityPool
		require.NoError(t, db.First(&after, before.ID).Error)
		assert.Equal(t, before.ReserveA.String(), after.ReserveA.String())
		assert.Equal(t, before.ReserveB.String(), after.ReserveB.String())
		assert.Equal(t, "0", mustBalance(t, db, "greedy", "USDC").String())
		assert.Equal(t, "0", mustBalance(t, db, "greedy", "ETH").String())

		var locks int64
		require.NoError(t, db.Model(&models.FlashLoanLock{}).
			Where("user_id = ?", "greedy").Count(&locks).Error)
		assert.Zero(t, locks)

		// Only the failed audit row survives the rollback.
		var record models.FlashLoanRecord
		require.NoError(t, db.Where("user_id = ?", "greedy").First(&record).Error)
		assert.Equal(t, models.FlashLoanStatusFailed, record.Status)

		var trades int64
		require.NoError(t, db.Model(&models.SwapTransaction{}).
			Where("user_id = ?", "greedy").Count(&trades).Error)
		assert.Zero(t, trades)
	})

	t.Run("unexpired lock blocks a second loan", func(t *testing.T) {
		lock := models.FlashLoanLock{
			UserID:    "locked",
			ExpiresAt: time.Now().Add(time.Minute),
		}
		require.NoError(t, db.Create(&lock).Error)

		_, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "locked",
			Token:  "USDC",
			Amount: bi(1),
			Operations: []FlashLoanOperation{
				{TokenIn: "USDC", TokenOut: "ETH", AmountIn: bi(1)},
			},
		})
		requireBusinessError(t, err, CodeFailedPrecondition)
	})

	t.Run("expired lock is swept on entry", func(t *testing.T) {
		lock := models.FlashLoanLock{
			UserID:    "stale",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		require.NoError(t, db.Create(&lock).Error)

		// The loan itself fails repayment, but it must get past the stale
		// lock rather than being rejected as reentrant.
		_, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "stale",
			Token:  "USDC",
			Amount: bi(100),
			Operations: []FlashLoanOperation{
				{TokenIn: "USDC", TokenOut: "ETH", AmountIn: bi(100)},
			},
		})
		requireBusinessError(t, err, CodeFailedPrecondition)
		require.NotContains(t, err.Error(), "already in progress")
	})

	t.Run("loan above pool liquidity is rejected", func(t *testing.T) {
		_, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "whale",
			Token:  "ETH",
			Amount: bi(100_000),
			Operations: []FlashLoanOperation{
				{TokenIn: "ETH", TokenOut: "USDC", AmountIn: bi(100_000)},
			},
		})
		requireBusinessError(t, err, CodeFailedPrecondition)

		// Rejected before execution: no audit row.
		var count int64
		require.NoError(t, db.Model(&models.FlashLoanRecord{}).
			Where("user_id = ?", "whale").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("loan above the configured maximum is rejected", func(t *testing.T) {
		over := FlashLoanMaxAmount()
		over.Add(over, bi(1))
		_, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "whale",
			Token:  "USDC",
			Amount: over,
			Operations: []FlashLoanOperation{
				{TokenIn: "USDC", TokenOut: "ETH", AmountIn: bi(1)},
			},
		})
		requireBusinessError(t, err, CodeInvalidArgument)
	})

	t.Run("requires at least one operation", func(t *testing.T) {
		_, err := ExecuteFlashLoan(db, FlashLoanParams{
			UserID: "arb",
			Token:  "USDC",
			Amount: bi(100),
		})
		requireBusinessError(t, err, CodeInvalidArgument)
	})
}

func TestFlashLoanSettlementPreservesConcurrentCredit(t *testing.T) {
	db := setupTestDB(t)

	seedPool(t, db, "lp", "ETH", "USDC", 1000, 1000)
	seedPool(t, db, "lp", "ETH", "DAI", 1000, 5000)
	seedPool(t, db, "lp", "DAI", "USDC", 5000, 2000)

	// A credit landing while the loan is in flight must survive settlement:
	// it either commits before the loan locks the balance row and is folded
	// into the initial snapshot, or it waits on the row lock and applies
	// after commit. Settlement writes deltas, so both orderings end at
	// deposit plus profit.
	done := make(chan error, 1)
	go func() {
		done <- Deposit(db, "arb", "USDC", bi(40))
	}()

	result, err := ExecuteFlashLoan(db, FlashLoanParams{
		UserID: "arb",
		Token:  "USDC",
		Amount: bi(100),
		Operations: []FlashLoanOperation{
			{TokenIn: "USDC", TokenOut: "ETH", AmountIn: bi(100)},
			{TokenIn: "ETH", TokenOut: "DAI", AmountIn: bi(90)},
			{TokenIn: "DAI", TokenOut: "USDC", AmountIn: bi(408)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, <-done)

	assert.Equal(t, "50", result.Profit.String())
	assert.Equal(t, "90", mustBalance(t, db, "arb", "USDC").String())
}

func TestListFlashLoans(t *testing.T) {
	db := setupTestDB(t)

	records := []models.FlashLoanRecord{
		{UserID: "u1", Token: "USDC", Status: models.FlashLoanStatusCompleted, TxHash: "0xaaa"},
		{UserID: "u1", Token: "ETH", Status: models.FlashLoanStatusFailed, TxHash: "0xbbb"},
		{UserID: "u2", Token: "DAI", Status: models.FlashLoanStatusCompleted, TxHash: "0xccc"},
	}
	for i := range records {
		require.NoError(t, db.Create(&records[i]).Error)
	}

	loans, err := ListFlashLoans(db, "u1")
	require.NoError(t, err)
	require.Len(t, loans, 2)
	// Newest first.
	assert.Equal(t, "0xbbb", loans[0].TxHash)
}
