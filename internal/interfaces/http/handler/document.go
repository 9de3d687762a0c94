package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"doc-qa-api/internal/application/rag"
	"doc-qa-api/internal/interfaces/http/dto"
	apperrors "doc-qa-api/pkg/errors"
	"doc-qa-api/pkg/logger"
	"doc-qa-api/pkg/metrics"
)

// DocumentHandler 文档上传与文件管理处理器
type DocumentHandler struct {
	indexer        *rag.Indexer
	library        *rag.Library
	maxUploadBytes int64
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(indexer *rag.Indexer, library *rag.Library, maxUploadBytes int64) *DocumentHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &DocumentHandler{
		indexer:        indexer,
		library:        library,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload 处理 multipart 文档上传并写入指定集合
// POST /v1/indexes/:index/documents
func (h *DocumentHandler) Upload(c *gin.Context) {
	index := c.Param("index")
	ctx := logger.WithContext(c.Request.Context(), logger.IndexKey, index)
	start := time.Now()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		dto.FromAppError(c, apperrors.ErrFileRequired.WithError(err))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		dto.FromAppError(c, apperrors.ErrInvalidParam.WithDetail("file exceeds upload size limit"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		dto.FromAppError(c, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to open uploaded file"))
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		dto.FromAppError(c, apperrors.Wrap(err, apperrors.CodeInternalError, "failed to read uploaded file"))
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	file := rag.UploadedFile{
		OriginalName: fileHeader.Filename,
		MIMEType:     mimeType,
		Content:      content,
	}

	result, err := h.indexer.Ingest(ctx, file, index)
	if err != nil {
		metrics.IngestDocumentsTotal.WithLabelValues(index, mimeType, "error").Inc()
		logger.Error(ctx, "document ingest failed", err, "file", fileHeader.Filename)
		dto.FromAppError(c, err)
		return
	}

	metrics.IngestDocumentsTotal.WithLabelValues(index, mimeType, "success").Inc()
	metrics.IngestChunksPerDocument.WithLabelValues(index, mimeType).Observe(float64(result.ChunkCount))
	metrics.IngestDuration.WithLabelValues(index).Observe(time.Since(start).Seconds())
	logger.Info(ctx, "document ingested",
		"file", result.FileName, "chunks", result.ChunkCount, "duration", time.Since(start).String())

	dto.Created(c, dto.UploadResponse{
		FileName:   result.FileName,
		ChunkCount: result.ChunkCount,
	})
}

// ListFiles 列举集合内已上传文件
// GET /v1/indexes/:index/files
func (h *DocumentHandler) ListFiles(c *gin.Context) {
	index := c.Param("index")

	files, err := h.library.ListFiles(c.Request.Context(), index)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.FileListResponse{Files: files})
}

// DeleteFile 删除属于一个上传文件的全部分块
// DELETE /v1/indexes/:index/files
func (h *DocumentHandler) DeleteFile(c *gin.Context) {
	index := c.Param("index")

	var req dto.DeleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.FromAppError(c, apperrors.ErrInvalidParam.WithError(err))
		return
	}

	deleted, err := h.library.DeleteFile(c.Request.Context(), index, req.File)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, dto.DeleteFileResponse{DeletedFiles: deleted})
}
