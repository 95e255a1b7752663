package handlers

import (
	"net/http"

	"dexledger/internal/handlers/business"
	dbconfig "dexledger/pkg/config"

	"github.com/gin-gonic/gin"
)

// FlashLoanOperationRequest is one payload swap in a flash loan request
type FlashLoanOperationRequest struct {
	TokenIn  string `json:"token_in" binding:"required"`
	TokenOut string `json:"token_out" binding:"required"`
	AmountIn string `json:"amount_in" binding:"required"`
}

// FlashLoanRequest represents the request body for an atomic flash loan
type FlashLoanRequest struct {
	UserID     string                      `json:"user_id" binding:"required"`
	Token      string                      `json:"token" binding:"required"`
	Amount     string                      `json:"amount" binding:"required"`
	Operations []FlashLoanOperationRequest `json:"operations" binding:"required,min=1,dive"`
}

// ExecuteFlashLoan borrows, runs the payload swaps, and settles atomically
func ExecuteFlashLoan(c *gin.Context) {
	var req FlashLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
		return
	}
	ops := make([]business.FlashLoanOperation, 0, len(req.Operations))
	for _, op := range req.Operations {
		amountIn, ok := parseAmount(op.AmountIn)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid operation amount_in"})
			return
		}
		ops = append(ops, business.FlashLoanOperation{
			TokenIn:  op.TokenIn,
			TokenOut: op.TokenOut,
			AmountIn: amountIn,
		})
	}

	result, err := business.ExecuteFlashLoan(dbconfig.DB, business.FlashLoanParams{
		UserID:     req.UserID,
		Token:      req.Token,
		Amount:     amount,
		Operations: ops,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListFlashLoans returns a user's flash loan history
func ListFlashLoans(c *gin.Context) {
	userID := c.Param("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id parameter is required"})
		return
	}
	records, err := business.ListFlashLoans(dbconfig.DB, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
