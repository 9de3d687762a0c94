package rag

import "context"

// VectorStore 定义应用层对"向量存储/检索"的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorStore interface {
	// CreateCollection 按声明的维度和 COSINE 度量创建集合。
	CreateCollection(ctx context.Context, name string, dimension int) error
	DropCollection(ctx context.Context, name string) error
	ListCollections(ctx context.Context) ([]string, error)
	HasCollection(ctx context.Context, name string) (bool, error)

	// Upsert 按 ID 插入或覆盖整批记录。
	// 记录向量维度与集合声明维度不一致时必须整批失败。
	Upsert(ctx context.Context, collection string, records []*Record) error
	Search(ctx context.Context, collection string, vector []float32, topK int) ([]*Match, error)
	ListIDs(ctx context.Context, collection string) ([]string, error)
	FetchByIDs(ctx context.Context, collection string, ids []string) ([]*Record, error)
	DeleteByIDs(ctx context.Context, collection string, ids []string) error
}

// Record 向量记录：id -> (vector, metadata)
type Record struct {
	ID          string
	Vector      []float32
	Title       string
	PageContent string
	Metadata    map[string]any
}

// Match 相似度检索命中，按相似度降序返回。
type Match struct {
	ID          string
	Score       float32
	Title       string
	PageContent string
	Metadata    map[string]any
}

// Completer 定义应用层对 LLM 补全服务的最小依赖。
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
