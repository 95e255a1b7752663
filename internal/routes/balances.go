package routes

import (
	"dexledger/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupBalanceRoutes sets up all routes related to user balances
func SetupBalanceRoutes(r *gin.Engine) {
	balances := r.Group("/balances")
	{
		balances.POST("/deposit", handlers.Deposit)
		balances.GET("/:user_id", handlers.GetBalances)
	}
}
