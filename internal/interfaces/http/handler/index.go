package handler

import (
	"github.com/gin-gonic/gin"

	"doc-qa-api/internal/application/rag"
	"doc-qa-api/internal/interfaces/http/dto"
	apperrors "doc-qa-api/pkg/errors"
)

// IndexHandler 集合管理处理器
type IndexHandler struct {
	library *rag.Library
}

// NewIndexHandler 创建集合管理处理器
func NewIndexHandler(library *rag.Library) *IndexHandler {
	return &IndexHandler{library: library}
}

// Create 创建集合
// POST /v1/indexes
func (h *IndexHandler) Create(c *gin.Context) {
	var req dto.CreateIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FromAppError(c, apperrors.ErrInvalidParam.WithError(err))
		return
	}

	if err := h.library.CreateIndex(c.Request.Context(), req.IndexName); err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Created(c, dto.IndexOpResponse{
		Index:   req.IndexName,
		Message: "index created successfully",
	})
}

// List 列举集合，支持 ?prefix= 前缀过滤
// GET /v1/indexes
func (h *IndexHandler) List(c *gin.Context) {
	indexes, err := h.library.ListIndexes(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.IndexListResponse{Indexes: indexes})
}

// Delete 删除集合
// DELETE /v1/indexes/:index
func (h *IndexHandler) Delete(c *gin.Context) {
	index := c.Param("index")

	if err := h.library.DeleteIndex(c.Request.Context(), index); err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.IndexOpResponse{
		Index:   index,
		Message: "index deleted successfully",
	})
}
