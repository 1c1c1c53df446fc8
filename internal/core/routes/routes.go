package routes

import (
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garment/internal/core/container"
	"garment/pkg/security"
)

func RegisterPublicRoutes(router *gin.Engine, container *container.Container) {
	container.LoginHandler.RegisterRoutes(router)
}

func RegisterProtectedRoutes(router *gin.Engine, container *container.Container) {
	protectedRoutes := router.Group("")
	protectedRoutes.Use(security.JWTMiddleware())

	container.UserHandler.RegisterRoutes(protectedRoutes)
	container.VendorHandler.RegisterRoutes(protectedRoutes)
	container.StockHandler.RegisterRoutes(protectedRoutes)
	container.CuttingHandler.RegisterRoutes(protectedRoutes)
	container.HistoryHandler.RegisterRoutes(protectedRoutes)
}

func RegisterUtilityRoutes(router *gin.Engine, container *container.Container, logger *zap.Logger) {
	router.GET("/health", container.HealthCheck.Handler())

	openapiFilePath := "./docs/index.html"
	if _, err := os.Stat(openapiFilePath); err == nil {
		router.GET("/openapi.html", func(c *gin.Context) {
			c.File(openapiFilePath)
		})
		logger.Info("route registered", zap.String("path", "/openapi.html"))
	} else {
		logger.Warn("openapi file not found, route not registered", zap.String("file", openapiFilePath))
	}
}
