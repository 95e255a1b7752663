package handlers

import (
	"net/http"

	"dexledger/internal/handlers/business"
	dbconfig "dexledger/pkg/config"

	"github.com/gin-gonic/gin"
)

// QuoteRequest represents the request body for pricing a swap
type QuoteRequest struct {
	TokenIn  string `json:"token_in" binding:"required"`
	TokenOut string `json:"token_out" binding:"required"`
	AmountIn string `json:"amount_in" binding:"required"`
}

// QuoteSwap prices a swap without executing it
func QuoteSwap(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amountIn, ok := parseAmount(req.AmountIn)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount_in"})
		return
	}

	quote, err := business.Quote(dbconfig.DB, req.TokenIn, req.TokenOut, amountIn)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// SwapRequest represents the request body for executing a swap
type SwapRequest struct {
	UserID           string `json:"user_id" binding:"required"`
	TokenIn          string `json:"token_in" binding:"required"`
	TokenOut         string `json:"token_out" binding:"required"`
	AmountIn         string `json:"amount_in" binding:"required"`
	MinimumAmountOut string `json:"minimum_amount_out"`
}

// ExecuteSwap executes a token swap against the pair's pool
func ExecuteSwap(c *gin.Context) {
	var req SwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amountIn, ok := parseAmount(req.AmountIn)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount_in"})
		return
	}
	params := business.SwapParams{
		UserID:   req.UserID,
		TokenIn:  req.TokenIn,
		TokenOut: req.TokenOut,
		AmountIn: amountIn,
	}
	if req.MinimumAmountOut != "" {
		minOut, ok := parseAmount(req.MinimumAmountOut)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid minimum_amount_out"})
			return
		}
		params.MinimumAmountOut = minOut
	}

	result, err := business.Swap(dbconfig.DB, params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
