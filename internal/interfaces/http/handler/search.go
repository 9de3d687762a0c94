package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"doc-qa-api/internal/application/rag"
	"doc-qa-api/internal/interfaces/http/dto"
	apperrors "doc-qa-api/pkg/errors"
	"doc-qa-api/pkg/logger"
)

// SearchHandler 检索问答处理器
type SearchHandler struct {
	engine *rag.Engine
}

// NewSearchHandler 创建检索问答处理器
func NewSearchHandler(engine *rag.Engine) *SearchHandler {
	return &SearchHandler{engine: engine}
}

// Search 对指定集合执行检索问答
// POST /v1/indexes/:index/search
func (h *SearchHandler) Search(c *gin.Context) {
	index := c.Param("index")
	ctx := logger.WithContext(c.Request.Context(), logger.IndexKey, index)

	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FromAppError(c, apperrors.ErrInvalidParam.WithError(err))
		return
	}

	start := time.Now()
	result, err := h.engine.Answer(ctx, req.Query, index, req.TopK)
	if err != nil {
		logger.Error(ctx, "search failed", err, "query_len", len(req.Query))
		dto.FromAppError(c, err)
		return
	}

	logger.Info(ctx, "search completed", "duration", time.Since(start).String())
	dto.Success(c, dto.SearchResponse{
		Query:  result.Query,
		Answer: result.Answer,
	})
}
