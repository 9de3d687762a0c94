package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	apperrors "doc-qa-api/pkg/errors"
	"doc-qa-api/pkg/logger"
)

// Indexer 文档入库流水线：加载 -> 分块 -> 批量 Embedding -> 整批 Upsert。
// 分块顺序全程保持：记录 ID 按位置生成，乱序会破坏元数据与向量的对应。
type Indexer struct {
	embedder embedding.Embedder
	store    VectorStore

	chunkSize    int
	chunkOverlap int
	rowBatchSize int
}

// NewIndexer 创建入库流水线
func NewIndexer(embedder embedding.Embedder, store VectorStore, chunkSize, chunkOverlap, rowBatchSize int) *Indexer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = DefaultChunkOverlap
	}
	if rowBatchSize <= 0 {
		rowBatchSize = DefaultRowBatchSize
	}
	return &Indexer{
		embedder:     embedder,
		store:        store,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		rowBatchSize: rowBatchSize,
	}
}

// Ingest 将上传文件写入指定集合。
// 保证：Embedding 调用完整发生在 Upsert 之前，失败则不产生任何写入；
// Upsert 按批提交，失败按集合侧错误原样上报，不做重试或回滚。
func (x *Indexer) Ingest(ctx context.Context, file UploadedFile, collection string) (*IngestResult, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("index name is required")
	}
	if len(file.Content) == 0 {
		return nil, apperrors.ErrFileRequired
	}

	doc, err := Load(file.Content, file.MIMEType, file.OriginalName)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	if doc.Tabular {
		chunks = chunkRows(doc.Segments, x.rowBatchSize)
	} else {
		chunks = chunkProse(doc.Segments, x.chunkSize, x.chunkOverlap)
	}
	if len(chunks) == 0 {
		return nil, apperrors.ErrNoDocuments.WithDetail(
			fmt.Sprintf("file %q yielded no chunks", file.OriginalName))
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.PageContent
	}

	// 单次批量调用，顺序即分块顺序
	vectors, err := x.embedder.EmbedStrings(ctx, texts)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "failed to embed chunks")
	}
	if len(vectors) != len(chunks) {
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed,
			fmt.Sprintf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors)))
	}

	records := make([]*Record, len(chunks))
	for i, c := range chunks {
		vec := make([]float32, len(vectors[i]))
		for j, v := range vectors[i] {
			vec[j] = float32(v)
		}
		records[i] = &Record{
			ID:          fmt.Sprintf("%s-%d", file.OriginalName, i),
			Vector:      vec,
			Title:       file.OriginalName,
			PageContent: c.PageContent,
			Metadata:    c.Metadata,
		}
	}

	if err := x.store.Upsert(ctx, collection, records); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to upsert vectors")
	}

	result := &IngestResult{
		FileName:   file.OriginalName,
		ChunkCount: len(records),
		IDs:        make([]string, len(records)),
	}
	for i, r := range records {
		result.IDs[i] = r.ID
	}

	logger.Info(ctx, "document ingested",
		"file", file.OriginalName,
		"index", collection,
		"chunks", len(records),
	)
	return result, nil
}
