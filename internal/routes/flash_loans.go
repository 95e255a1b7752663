package routes

import (
	"dexledger/internal/handlers"
	"dexledger/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupFlashLoanRoutes sets up all routes related to flash loans.
// Execution is rate limited per IP since each loan holds row locks across
// every pool touching the borrowed token.
func SetupFlashLoanRoutes(r *gin.Engine) {
	loans := r.Group("/flash-loans")
	loans.Use(middleware.RateLimiterMiddleware(middleware.RateLimiterConfigFromEnv(2, 4)))
	{
		loans.POST("", handlers.ExecuteFlashLoan)
		loans.GET("/:user_id", handlers.ListFlashLoans)
	}
}
