package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"webremote/internal/config"
	"webremote/internal/microservices/http-api/handler"
	"webremote/internal/microservices/http-api/middleware"
	"webremote/internal/microservices/http-api/service"
	"webremote/internal/microservices/websocket"
)

func newRouter(
	cfg *config.Config,
	logger *slog.Logger,
	hub *websocket.Hub,
	healthService service.HealthService,
	subprocessService service.SubprocessService,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.GET("/ws", websocket.WSHandler(hub, websocket.HandlerOptions{
		AllowedOrigins: cfg.CORSOrigins,
		Client: websocket.Options{
			WriteWait:      cfg.WSWriteWait,
			PongWait:       cfg.WSPongWait,
			MaxMessageSize: cfg.WSMaxMessageSize,
		},
	}))

	ingressHandler := handler.NewIngressHandler(hub.Engine(), cfg.IngressMaxBodyBytes, logger)
	r.POST("/data", ingressHandler.PushData)

	healthHandler := handler.NewHealthHandler(healthService)
	r.GET("/health", healthHandler.GetHealth)
	r.POST("/health", healthHandler.UpdateHealth)
	r.GET("/health/history", healthHandler.GetHistory)

	subprocessHandler := handler.NewSubprocessHandler(subprocessService)
	r.GET("/subprocess/start", subprocessHandler.Start)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	return r
}
