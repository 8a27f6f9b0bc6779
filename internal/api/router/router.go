package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/limaJavier/timetabling-csp/internal/api/handler"
	"github.com/limaJavier/timetabling-csp/internal/api/middleware"
	"github.com/limaJavier/timetabling-csp/internal/config"
)

func Setup(cfg *config.Config, h *handler.SolverHandler, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "strategies": config.Strategies})
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/solve/:strategy", h.Solve)
		v1.POST("/verify", h.Verify)
	}

	return r
}
