package routes

import (
	"dexledger/internal/ws"

	"github.com/gin-gonic/gin"
)

// SetupWebsocketRoutes sets up the live trade feed
func SetupWebsocketRoutes(r *gin.Engine) {
	r.GET("/ws/trades", ws.ServeTrades)
}
