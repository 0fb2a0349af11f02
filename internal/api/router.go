package api

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"portfolio/internal/api/middleware"
	"portfolio/internal/config"
	"portfolio/internal/errcode"
	"portfolio/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎并挂载全局中间件，业务路由由 RegisterRoutes 注册。
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidatorTagNames()

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		gin.CustomRecoveryWithWriter(io.Discard, recoverInternal),
		metrics.GinMiddleware(),
		middleware.SecurityHeaders(),
	)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	return router
}

// recoverInternal 记录 panic 详情，只向客户端返回通用错误。
func recoverInternal(c *gin.Context, recovered any) {
	middleware.LoggerFromContext(c).Error("panic recovered",
		slog.Any("panic", recovered),
		slog.String("stack", string(debug.Stack())),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errcode.InternalMessage})
}

// WithCORS 为引擎套上 CORS 策略，白名单为空时允许任意来源。
func WithCORS(h http.Handler, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.CorrelationIDHeader},
		ExposedHeaders: []string{middleware.CorrelationIDHeader},
		MaxAge:         600,
	}).Handler(h)
}
