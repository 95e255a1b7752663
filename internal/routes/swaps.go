package routes

import (
	"dexledger/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupSwapRoutes sets up all routes related to token swaps
func SetupSwapRoutes(r *gin.Engine) {
	swap := r.Group("/swap")
	{
		swap.POST("/quote", handlers.QuoteSwap)
		swap.POST("/execute", handlers.ExecuteSwap)
	}
}
