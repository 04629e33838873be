package api

import (
	"github.com/gin-gonic/gin"

	"parkingpal/internal/api/handler"
	"parkingpal/internal/api/middleware"
	"parkingpal/internal/service"
)

func SetupRouter(as *service.AuthService, ss *service.SignService,
	authMw *middleware.AuthMiddleware, wsManager *handler.WebSocketManager) *gin.Engine {
	r := gin.Default()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// WebSocket endpoint for the live scan feed (no auth for the
	// real-time connection).
	wsHandler := handler.NewWebSocketHandler(wsManager)
	r.GET("/ws", wsHandler.HandleWebSocket)

	authHandler := handler.NewAuthHandler(as)
	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.Register)
		authRoutes.POST("/login", authHandler.Login)
	}

	v1 := r.Group("/api/v1")
	v1.Use(authMw.Authenticate())
	{
		signH := handler.NewSignHandler(ss)
		signRoutes := v1.Group("/signs")
		{
			signRoutes.POST("/analyze", signH.AnalyzeSign)
			signRoutes.GET("/:id", signH.GetSign)
		}

		v1.GET("/history", signH.GetHistory)
		v1.GET("/history/recent", authMw.AuthorizeRole("admin"), signH.GetRecentHistory)
	}
	return r
}
