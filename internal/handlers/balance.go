package handlers

import (
	"net/http"

	"dexledger/internal/handlers/business"
	dbconfig "dexledger/pkg/config"

	"github.com/gin-gonic/gin"
)

// DepositRequest represents the request body for crediting a balance
type DepositRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Token  string `json:"token" binding:"required"`
	Amount string `json:"amount" binding:"required"`
}

// Deposit credits a user's balance in one token
func Deposit(c *gin.Context) {
	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}

	if err := business.Deposit(dbconfig.DB, req.UserID, req.Token, amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deposit credited"})
}

// GetBalances returns all token balances for a user
func GetBalances(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id parameter is required"})
		return
	}
	balances, err := business.GetBalances(dbconfig.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}
