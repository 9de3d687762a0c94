// Package embedding 提供 Embedding 服务客户端
package embedding

import (
	"context"
	"fmt"
	"time"

	"doc-qa-api/internal/config"
	"doc-qa-api/pkg/metrics"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// NewEinoEmbedder 创建基于 Eino 的 Embedder（OpenAI 兼容接口）
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	return &instrumentedEmbedder{inner: embedder}, nil
}

// instrumentedEmbedder 在 Embedder 外层记录调用指标
type instrumentedEmbedder struct {
	inner embedding.Embedder
}

func (e *instrumentedEmbedder) EmbedStrings(ctx context.Context, texts []string, opts ...embedding.Option) ([][]float64, error) {
	start := time.Now()
	vectors, err := e.inner.EmbedStrings(ctx, texts, opts...)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EmbeddingCallDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	metrics.EmbeddingTextsTotal.Add(float64(len(texts)))

	return vectors, err
}
