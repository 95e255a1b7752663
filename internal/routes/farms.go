package routes

import (
	"dexledger/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupFarmRoutes sets up all routes related to yield farming
func SetupFarmRoutes(r *gin.Engine) {
	farms := r.Group("/farms")
	{
		farms.GET("", handlers.ListFarms)
		farms.POST("", handlers.CreateFarm)
		farms.GET("/positions/:user_id", handlers.ListStakingPositions)
		farms.POST("/stake", handlers.Stake)
		farms.POST("/unstake", handlers.Unstake)
		farms.POST("/claim", handlers.ClaimRewards)
		farms.POST("/:id/refresh", handlers.RefreshFarm)
	}
}
