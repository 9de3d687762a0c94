// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"doc-qa-api/internal/interfaces/http/dto"
)

// HealthChecker 依赖健康检查接口
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	vectorDB HealthChecker
	version  string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(vectorDB HealthChecker, version string) *HealthHandler {
	return &HealthHandler{vectorDB: vectorDB, version: version}
}

// Health 完整健康检查，包含向量库连通性
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := "healthy"
	deps := gin.H{"milvus": "up"}

	if err := h.vectorDB.HealthCheck(ctx); err != nil {
		status = "degraded"
		deps["milvus"] = "down"
	}

	code := 200
	if status != "healthy" {
		code = 503
	}
	c.JSON(code, gin.H{
		"status":       status,
		"version":      h.version,
		"dependencies": deps,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Ready 就绪检查，向量库不可达时返回 503
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.vectorDB.HealthCheck(ctx); err != nil {
		c.JSON(503, gin.H{"status": "not ready", "reason": err.Error()})
		return
	}
	dto.Success(c, gin.H{"status": "ready"})
}

// Live 存活检查，进程在即成功
func (h *HealthHandler) Live(c *gin.Context) {
	dto.Success(c, gin.H{"status": "alive"})
}
