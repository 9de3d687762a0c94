package rag

import (
	"context"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	apperrors "doc-qa-api/pkg/errors"
	"doc-qa-api/pkg/logger"
)

// Engine 检索问答流水线：查询 Embedding -> Top-K 相似度检索 -> 上下文拼接 -> LLM 补全。
type Engine struct {
	embedder  embedding.Embedder
	store     VectorStore
	completer Completer

	topK int
}

// NewEngine 创建问答引擎
func NewEngine(embedder embedding.Embedder, store VectorStore, completer Completer, topK int) *Engine {
	if topK <= 0 {
		topK = 10
	}
	return &Engine{
		embedder:  embedder,
		store:     store,
		completer: completer,
		topK:      topK,
	}
}

// Answer 对指定集合执行检索问答。
// topK <= 0 时使用引擎默认值；上限 50。
// 上下文为命中 pageContent 按返回顺序以换行拼接，不做重排、去重或截断。
func (e *Engine) Answer(ctx context.Context, query, collection string, topK int) (*AnswerResult, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("index name is required")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("query must be a non-empty string")
	}
	if topK <= 0 {
		topK = e.topK
	}
	if topK > 50 {
		topK = 50
	}

	vectors, err := e.embedder.EmbedStrings(ctx, []string{query})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "failed to embed query")
	}
	if len(vectors) == 0 {
		return nil, apperrors.New(apperrors.CodeEmbeddingFailed, "empty embedding result")
	}
	vec := make([]float32, len(vectors[0]))
	for i, v := range vectors[0] {
		vec[i] = float32(v)
	}

	matches, err := e.store.Search(ctx, collection, vec, topK)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "similarity search failed")
	}
	if len(matches) == 0 {
		return nil, apperrors.ErrNoRelevantContext
	}

	parts := make([]string, 0, len(matches))
	for _, m := range matches {
		parts = append(parts, m.PageContent)
	}
	context := strings.Join(parts, "\n")

	prompt := BuildPrompt(context, query)
	answer, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeLLMCallFailed, "completion failed")
	}

	logger.Info(ctx, "query answered",
		"index", collection,
		"matches", len(matches),
		"top_k", topK,
	)
	return &AnswerResult{Query: query, Answer: answer}, nil
}
