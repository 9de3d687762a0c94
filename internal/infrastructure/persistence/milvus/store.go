// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"doc-qa-api/internal/application/rag"
	"doc-qa-api/pkg/metrics"
)

// listIDsPageSize 分页列举 ID 时的单页大小
const listIDsPageSize = 1000

// Store 基于 Milvus 的向量存储实现（rag.VectorStore）。
type Store struct {
	client *Client
}

// NewStore 创建向量存储
func NewStore(c *Client) *Store {
	return &Store{client: c}
}

var _ rag.VectorStore = (*Store)(nil)

// observe 记录单次操作的时延和结果
func observe(op, collection string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.MilvusOpDuration.WithLabelValues(op, collection).Observe(time.Since(start).Seconds())
	metrics.MilvusOpTotal.WithLabelValues(op, collection, status).Inc()
}

// CreateCollection 创建集合并建立 HNSW/COSINE 索引，随后加载到内存。
func (s *Store) CreateCollection(ctx context.Context, name string, dimension int) (err error) {
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(
			attribute.String("collection", name),
			attribute.Int("dimension", dimension),
		))
	defer span.End()
	start := time.Now()
	defer func() { observe("create_collection", name, start, err) }()

	collName := s.client.CollectionName(name)
	schema := ChunkCollectionSchema(collName, dimension)

	if err = s.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		s.client.config.HNSWM,
		s.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build index: %w", err)
	}
	if err = s.client.milvus.CreateIndex(ctx, collName, FieldVector, idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	if err = s.client.milvus.LoadCollection(ctx, collName, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to load collection: %w", err)
	}
	return nil
}

// DropCollection 删除集合
func (s *Store) DropCollection(ctx context.Context, name string) (err error) {
	ctx, span := tracer.Start(ctx, "milvus.DropCollection",
		trace.WithAttributes(attribute.String("collection", name)))
	defer span.End()
	start := time.Now()
	defer func() { observe("drop_collection", name, start, err) }()

	if err = s.client.milvus.DropCollection(ctx, s.client.CollectionName(name)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to drop collection: %w", err)
	}
	return nil
}

// ListCollections 列举集合名（去掉内部前缀后的对外名称）
func (s *Store) ListCollections(ctx context.Context) (names []string, err error) {
	ctx, span := tracer.Start(ctx, "milvus.ListCollections")
	defer span.End()
	start := time.Now()
	defer func() { observe("list_collections", "", start, err) }()

	colls, err := s.client.milvus.ListCollections(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	names = make([]string, 0, len(colls))
	for _, c := range colls {
		names = append(names, s.client.logicalName(c.Name))
	}
	return names, nil
}

// HasCollection 检查集合是否存在
func (s *Store) HasCollection(ctx context.Context, name string) (bool, error) {
	return s.client.HasCollection(ctx, name)
}

// dimension 读取集合声明的向量维度
func (s *Store) dimension(ctx context.Context, collName string) (int, error) {
	coll, err := s.client.milvus.DescribeCollection(ctx, collName)
	if err != nil {
		return 0, fmt.Errorf("failed to describe collection: %w", err)
	}
	for _, f := range coll.Schema.Fields {
		if f.Name != FieldVector {
			continue
		}
		return parseDim(f.TypeParams["dim"])
	}
	return 0, fmt.Errorf("collection %q has no vector field", collName)
}

func parseDim(s string) (int, error) {
	var d int
	if _, err := fmt.Sscanf(s, "%d", &d); err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid vector dimension %q", s)
	}
	return d, nil
}

// Upsert 整批写入记录。任一记录向量维度与集合声明不符时整批失败，不截断不补零。
func (s *Store) Upsert(ctx context.Context, collection string, records []*rag.Record) (err error) {
	ctx, span := tracer.Start(ctx, "milvus.Upsert",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("count", len(records)),
		))
	defer span.End()
	start := time.Now()
	defer func() { observe("upsert", collection, start, err) }()

	if len(records) == 0 {
		return nil
	}

	collName := s.client.CollectionName(collection)

	dim, err := s.dimension(ctx, collName)
	if err != nil {
		span.RecordError(err)
		return err
	}
	for _, r := range records {
		if len(r.Vector) != dim {
			err = fmt.Errorf("vector dimension mismatch for %q: got %d, collection requires %d",
				r.ID, len(r.Vector), dim)
			span.RecordError(err)
			return err
		}
	}

	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	titles := make([]string, len(records))
	contents := make([]string, len(records))
	metas := make([]string, len(records))

	for i, r := range records {
		ids[i] = r.ID
		vectors[i] = r.Vector
		titles[i] = r.Title
		contents[i] = r.PageContent
		metas[i] = encodeMeta(r.Metadata)
	}

	_, err = s.client.milvus.Upsert(ctx, collName, "",
		entity.NewColumnVarChar(FieldID, ids),
		entity.NewColumnFloatVector(FieldVector, dim, vectors),
		entity.NewColumnVarChar(FieldTitle, titles),
		entity.NewColumnVarChar(FieldPageContent, contents),
		entity.NewColumnVarChar(FieldChunkMeta, metas),
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upsert records: %w", err)
	}
	return nil
}

// Search 按 COSINE 相似度检索 Top-K，结果按相似度降序。
func (s *Store) Search(ctx context.Context, collection string, vector []float32, topK int) (out []*rag.Match, err error) {
	ctx, span := tracer.Start(ctx, "milvus.Search",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("top_k", topK),
		))
	defer span.End()
	start := time.Now()
	defer func() { observe("search", collection, start, err) }()

	collName := s.client.CollectionName(collection)

	sp, err := entity.NewIndexHNSWSearchParam(s.client.config.SearchEf)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := s.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{FieldID, FieldTitle, FieldPageContent, FieldChunkMeta},
		[]entity.Vector{entity.FloatVector(vector)},
		FieldVector,
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	for _, result := range results {
		idCol, _ := result.Fields.GetColumn(FieldID).(*entity.ColumnVarChar)
		titleCol, _ := result.Fields.GetColumn(FieldTitle).(*entity.ColumnVarChar)
		contentCol, _ := result.Fields.GetColumn(FieldPageContent).(*entity.ColumnVarChar)
		metaCol, _ := result.Fields.GetColumn(FieldChunkMeta).(*entity.ColumnVarChar)

		for i := 0; i < result.ResultCount; i++ {
			m := &rag.Match{Score: result.Scores[i]}
			if idCol != nil {
				m.ID = idCol.Data()[i]
			}
			if titleCol != nil {
				m.Title = titleCol.Data()[i]
			}
			if contentCol != nil {
				m.PageContent = contentCol.Data()[i]
			}
			if metaCol != nil {
				m.Metadata = decodeMeta(metaCol.Data()[i])
			}
			out = append(out, m)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(out)))
	return out, nil
}

// ListIDs 分页列举集合内全部记录 ID
func (s *Store) ListIDs(ctx context.Context, collection string) (ids []string, err error) {
	ctx, span := tracer.Start(ctx, "milvus.ListIDs",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()
	start := time.Now()
	defer func() { observe("list_ids", collection, start, err) }()

	collName := s.client.CollectionName(collection)

	for offset := int64(0); ; offset += listIDsPageSize {
		rs, qerr := s.client.milvus.Query(ctx, collName, nil,
			fmt.Sprintf(`%s != ""`, FieldID),
			[]string{FieldID},
			client.WithOffset(offset),
			client.WithLimit(listIDsPageSize),
		)
		if qerr != nil {
			err = fmt.Errorf("failed to query ids: %w", qerr)
			span.RecordError(err)
			return nil, err
		}

		idCol, _ := rs.GetColumn(FieldID).(*entity.ColumnVarChar)
		if idCol == nil || idCol.Len() == 0 {
			break
		}
		ids = append(ids, idCol.Data()...)
		if idCol.Len() < listIDsPageSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("id_count", len(ids)))
	return ids, nil
}

// FetchByIDs 按 ID 列表取回记录（不含向量值）
func (s *Store) FetchByIDs(ctx context.Context, collection string, ids []string) (out []*rag.Record, err error) {
	ctx, span := tracer.Start(ctx, "milvus.FetchByIDs",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("count", len(ids)),
		))
	defer span.End()
	start := time.Now()
	defer func() { observe("fetch_by_ids", collection, start, err) }()

	if len(ids) == 0 {
		return nil, nil
	}

	collName := s.client.CollectionName(collection)

	rs, err := s.client.milvus.Query(ctx, collName, nil,
		idInExpr(ids),
		[]string{FieldID, FieldTitle, FieldPageContent, FieldChunkMeta},
	)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}

	idCol, _ := rs.GetColumn(FieldID).(*entity.ColumnVarChar)
	titleCol, _ := rs.GetColumn(FieldTitle).(*entity.ColumnVarChar)
	contentCol, _ := rs.GetColumn(FieldPageContent).(*entity.ColumnVarChar)
	metaCol, _ := rs.GetColumn(FieldChunkMeta).(*entity.ColumnVarChar)
	if idCol == nil {
		return nil, nil
	}

	for i := 0; i < idCol.Len(); i++ {
		r := &rag.Record{ID: idCol.Data()[i]}
		if titleCol != nil {
			r.Title = titleCol.Data()[i]
		}
		if contentCol != nil {
			r.PageContent = contentCol.Data()[i]
		}
		if metaCol != nil {
			r.Metadata = decodeMeta(metaCol.Data()[i])
		}
		out = append(out, r)
	}
	return out, nil
}

// DeleteByIDs 按 ID 列表删除记录
func (s *Store) DeleteByIDs(ctx context.Context, collection string, ids []string) (err error) {
	ctx, span := tracer.Start(ctx, "milvus.DeleteByIDs",
		trace.WithAttributes(
			attribute.String("collection", collection),
			attribute.Int("count", len(ids)),
		))
	defer span.End()
	start := time.Now()
	defer func() { observe("delete_by_ids", collection, start, err) }()

	if len(ids) == 0 {
		return nil
	}

	collName := s.client.CollectionName(collection)
	if err = s.client.milvus.Delete(ctx, collName, "", idInExpr(ids)); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete records: %w", err)
	}
	return nil
}

// idInExpr 构建 `id in [...]` 过滤表达式
func idInExpr(ids []string) string {
	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = fmt.Sprintf("%q", id)
	}
	return fmt.Sprintf("%s in [%s]", FieldID, strings.Join(quoted, ", "))
}

// encodeMeta 把分块元数据编码为 JSON；空元数据写 "{}"
func encodeMeta(meta map[string]any) string {
	if len(meta) == 0 {
		return "{}"
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// decodeMeta 解析 JSON 元数据；历史数据缺失时安全降级为空映射
func decodeMeta(s string) map[string]any {
	s = strings.TrimSpace(s)
	if s == "" {
		return map[string]any{}
	}
	var meta map[string]any
	if err := json.Unmarshal([]byte(s), &meta); err != nil {
		return map[string]any{}
	}
	return meta
}
