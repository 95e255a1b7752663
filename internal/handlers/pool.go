package handlers

import (
	"net/http"

	"dexledger/internal/handlers/business"
	dbconfig "dexledger/pkg/config"

	"github.com/gin-gonic/gin"
)

// AddLiquidityRequest represents the request body for a dual-sided deposit
type AddLiquidityRequest struct {
	UserID               string `json:"user_id" binding:"required"`
	TokenA               string `json:"token_a" binding:"required"`
	TokenB               string `json:"token_b" binding:"required"`
	AmountA              string `json:"amount_a" binding:"required"`
	AmountB              string `json:"amount_b" binding:"required"`
	SlippageToleranceBps int64  `json:"slippage_tolerance_bps"`
}

// AddLiquidity deposits both tokens of a pair, creating the pool if needed
func AddLiquidity(c *gin.Context) {
	var req AddLiquidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amountA, ok := parseAmount(req.AmountA)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount_a"})
		return
	}
	amountB, ok := parseAmount(req.AmountB)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount_b"})
		return
	}

	result, err := business.AddLiquidity(dbconfig.DB, business.AddLiquidityParams{
		UserID:               req.UserID,
		TokenA:               req.TokenA,
		TokenB:               req.TokenB,
		AmountA:              amountA,
		AmountB:              amountB,
		SlippageToleranceBps: req.SlippageToleranceBps,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListPools returns all liquidity pools
func ListPools(c *gin.Context) {
	pools, err := business.ListPools(dbconfig.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pools)
}

// ListPositions returns a user's liquidity positions
func ListPositions(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id parameter is required"})
		return
	}
	positions, err := business.ListPositions(dbconfig.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}
