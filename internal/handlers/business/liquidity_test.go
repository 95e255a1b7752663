package business

import (
	"testing"

	"dexledger/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddLiquidity(t *testing.T) {
	db := setupTestDB(t)

	t.Run("first deposit mints sqrt of product", func(t *testing.T) {
		poolID, minted := seedPool(t, db, "alice", "USDC", "ETH", 400, 100)
		assert.Equal(t, "200", minted.String()) // floor(sqrt(400*100))

		var pool models.LiquidityPool
		require.NoError(t, db.First(&pool, poolID).Error)
		// Pair is stored in lexicographic order regardless of request order.
		assert.Equal(t, "ETH", pool.TokenA)
		assert.Equal(t, "USDC", pool.TokenB)
		assert.Equal(t, "100", pool.ReserveA.String())
		assert.Equal(t, "400", pool.ReserveB.String())
		assert.Equal(t, "200", pool.TotalLiquidity.String())

		assert.Equal(t, "0", mustBalance(t, db, "alice", "USDC").String())
		assert.Equal(t, "0", mustBalance(t, db, "alice", "ETH").String())

		positions, err := ListPositions(db, "alice")
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "200", positions[0].LiquidityTokens.String())
		assert.Equal(t, "100", positions[0].SharePercentage.String())
	})

	t.Run("later deposit mints pro rata", func(t *testing.T) {
		seedBalance(t, db, "bob", "ETH", 50)
		seedBalance(t, db, "bob", "USDC", 200)
		result, err := AddLiquidity(db, AddLiquidityParams{
			UserID:  "bob",
			TokenA:  "ETH",
			TokenB:  "USDC",
			AmountA: bi(50),
			AmountB: bi(200),
		})
		require.NoError(t, err)
		// min(50*200/100, 200*200/400) = 100
		assert.Equal(t, "100", result.LiquidityTokensMinted.String())

		var pool models.LiquidityPool
		require.NoError(t, db.First(&pool, result.PoolID).Error)
		assert.Equal(t, "150", pool.ReserveA.String())
		assert.Equal(t, "600", pool.ReserveB.String())
		assert.Equal(t, "300", pool.TotalLiquidity.String())
	})

	t.Run("unbalanced deposit is rejected and rolled back", func(t *testing.T) {
		seedBalance(t, db, "carol", "ETH", 50)
		seedBalance(t, db, "carol", "USDC", 100)
		_, err := AddLiquidity(db, AddLiquidityParams{
			UserID:  "carol",
			TokenA:  "ETH",
			TokenB:  "USDC",
			AmountA: bi(50),
			AmountB: bi(100), // pool ratio is 1:4, this is 1:2
		})
		requireBusinessError(t, err, CodeFailedPrecondition)

		assert.Equal(t, "50", mustBalance(t, db, "carol", "ETH").String())
		assert.Equal(t, "100", mustBalance(t, db, "carol", "USDC").String())
	})

	t.Run("insufficient balance aborts pool creation", func(t *testing.T) {
		_, err := AddLiquidity(db, AddLiquidityParams{
			UserID:  "dave",
			TokenA:  "BTC",
			TokenB:  "USDC",
			AmountA: bi(10),
			AmountB: bi(10),
		})
		requireBusinessError(t, err, CodeFailedPrecondition)

		var count int64
		require.NoError(t, db.Model(&models.LiquidityPool{}).
			Where("token_a = ? OR token_b = ?", "BTC", "BTC").
			Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("rejects a token paired with itself", func(t *testing.T) {
		_, err := AddLiquidity(db, AddLiquidityParams{
			UserID:  "alice",
			TokenA:  "eth",
			TokenB:  "ETH",
			AmountA: bi(10),
			AmountB: bi(10),
		})
		requireBusinessError(t, err, CodeInvalidArgument)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		_, err := AddLiquidity(db, AddLiquidityParams{
			UserID:  "alice",
			TokenA:  "ETH",
			TokenB:  "USDC",
			AmountA: bi(0),
			AmountB: bi(10),
		})
		requireBusinessError(t, err, CodeInvalidArgument)
	})
}

func TestListPools(t *testing.T) {
	db := setupTestDB(t)

	seedPool(t, db, "alice", "ETH", "USDC", 100, 400)

	pools, err := ListPools(db)
	require.NoError(t, err)
	require.Len(t, pools, 1)
	// 400 USDC per 100 ETH
	assert.Equal(t, "4", pools[0].SpotPrice.String())
}
