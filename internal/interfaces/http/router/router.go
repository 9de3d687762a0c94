// Package router 提供 HTTP 路由注册
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"doc-qa-api/internal/config"
	"doc-qa-api/internal/interfaces/http/handler"
	"doc-qa-api/internal/interfaces/http/middleware"
)

// Handlers 路由依赖的处理器集合
type Handlers struct {
	Health   *handler.HealthHandler
	Document *handler.DocumentHandler
	Search   *handler.SearchHandler
	Index    *handler.IndexHandler
}

// Setup 创建 gin 引擎并注册全部路由
func Setup(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery())
	if cfg.Observability.Tracing.Enabled {
		r.Use(middleware.Trace(cfg.App.Name))
		r.Use(middleware.TraceContext())
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: cfg.Security.CORS.AllowedHeaders,
	}))
	if cfg.Observability.Metrics.Enabled {
		r.Use(middleware.Metrics())
	}

	r.MaxMultipartMemory = cfg.Server.HTTP.MaxUploadBytes

	// 健康检查
	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)
	r.GET("/live", h.Health.Live)

	v1 := r.Group("/v1")
	{
		indexes := v1.Group("/indexes")
		{
			indexes.POST("", h.Index.Create)
			indexes.GET("", h.Index.List)
			indexes.DELETE("/:index", h.Index.Delete)

			indexes.POST("/:index/documents", h.Document.Upload)
			indexes.GET("/:index/files", h.Document.ListFiles)
			indexes.DELETE("/:index/files", h.Document.DeleteFile)

			indexes.POST("/:index/search", h.Search.Search)
		}
	}

	return r
}

// SetupMetrics 创建独立的指标暴露端点
func SetupMetrics(path string) *gin.Engine {
	if path == "" {
		path = "/metrics"
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET(path, gin.WrapH(promhttp.Handler()))
	return r
}
