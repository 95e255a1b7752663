package routes

import (
	"dexledger/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupPoolRoutes sets up all routes related to liquidity pools
func SetupPoolRoutes(r *gin.Engine) {
	pools := r.Group("/pools")
	{
		pools.GET("", handlers.ListPools)
		pools.POST("/add-liquidity", handlers.AddLiquidity)
		pools.GET("/positions/:user_id", handlers.ListPositions)
	}
}
