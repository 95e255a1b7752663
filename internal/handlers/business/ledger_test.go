package business

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDeposit(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Deposit(db, "alice", "ETH", bi(100)))
	require.NoError(t, Deposit(db, "alice", "ETH", bi(50)))
	assert.Equal(t, "150", mustBalance(t, db, "alice", "ETH").String())

	err := Deposit(db, "alice", "ETH", bi(0))
	requireBusinessError(t, err, CodeInvalidArgument)

	err = Deposit(db, "", "ETH", bi(10))
	requireBusinessError(t, err, CodeInvalidArgument)
}

func TestGetBalances(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Deposit(db, "alice", "USDC", bi(5)))
	require.NoError(t, Deposit(db, "alice", "ETH", bi(7)))
	require.NoError(t, Deposit(db, "bob", "ETH", bi(9)))

	balances, err := GetBalances(db, "alice")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	// Ordered by token.
	assert.Equal(t, "ETH", balances[0].Token)
	assert.Equal(t, "USDC", balances[1].Token)
}

func TestDebitBalance(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, Deposit(db, "alice", "ETH", bi(100)))

	err := db.Transaction(func(tx *gorm.DB) error {
		return DebitBalance(tx, "alice", "ETH", bi(40))
	})
	require.NoError(t, err)
	assert.Equal(t, "60", mustBalance(t, db, "alice", "ETH").String())

	err = db.Transaction(func(tx *gorm.DB) error {
		return DebitBalance(tx, "alice", "ETH", bi(61))
	})
	requireBusinessError(t, err, CodeFailedPrecondition)

	err = db.Transaction(func(tx *gorm.DB) error {
		return DebitBalance(tx, "alice", "BTC", bi(1))
	})
	requireBusinessError(t, err, CodeFailedPrecondition)
}
