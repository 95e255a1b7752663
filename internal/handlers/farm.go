package handlers

import (
	"net/http"
	"strconv"

	"dexledger/internal/handlers/business"
	dbconfig "dexledger/pkg/config"

	"github.com/gin-gonic/gin"
)

// CreateFarmRequest represents the request body for opening a yield farm
type CreateFarmRequest struct {
	PoolID         uint   `json:"pool_id" binding:"required"`
	RewardToken    string `json:"reward_token" binding:"required"`
	RewardRate     string `json:"reward_rate" binding:"required"`
	LockPeriodDays int    `json:"lock_period_days"`
	DurationDays   int    `json:"duration_days" binding:"required,min=1"`
}

// CreateFarm opens a yield farm over an existing pool
func CreateFarm(c *gin.Context) {
	var req CreateFarmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rewardRate, ok := parseAmount(req.RewardRate)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward_rate"})
		return
	}

	farm, err := business.CreateFarm(dbconfig.DB, business.CreateFarmParams{
		PoolID:         req.PoolID,
		RewardToken:    req.RewardToken,
		RewardRate:     rewardRate,
		LockPeriodDays: req.LockPeriodDays,
		DurationDays:   req.DurationDays,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farm)
}

// ListFarms returns all yield farms
func ListFarms(c *gin.Context) {
	farms, err := business.ListFarms(dbconfig.DB)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, farms)
}

// ListStakingPositions returns a user's staking positions with live rewards
func ListStakingPositions(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id parameter is required"})
		return
	}
	positions, err := business.ListStakingPositions(dbconfig.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, positions)
}

// StakeRequest represents the request body for staking and unstaking
type StakeRequest struct {
	UserID string `json:"user_id" binding:"required"`
	FarmID uint   `json:"farm_id" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Stake moves LP tokens from a liquidity position into a farm
func Stake(c *gin.Context) {
	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	if err := business.Stake(dbconfig.DB, req.UserID, req.FarmID, amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staked successfully"})
}

// Unstake withdraws staked LP tokens and settles accrued rewards
func Unstake(c *gin.Context) {
	var req StakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	claimed, err := business.Unstake(dbconfig.DB, req.UserID, req.FarmID, amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unstaked successfully", "rewards_claimed": claimed.String()})
}

// ClaimRequest represents the request body for claiming farm rewards
type ClaimRequest struct {
	UserID string `json:"user_id" binding:"required"`
	FarmID uint   `json:"farm_id" binding:"required"`
}

// ClaimRewards pays out accrued rewards without unstaking
func ClaimRewards(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claimed, err := business.ClaimRewards(dbconfig.DB, req.UserID, req.FarmID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards_claimed": claimed.String()})
}

// RefreshFarm advances one farm's reward accumulator on demand
func RefreshFarm(c *gin.Context) {
	farmID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid farm ID format"})
		return
	}
	if err := business.RefreshFarm(dbconfig.DB, uint(farmID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Farm refreshed"})
}
