package rag

import (
	"context"
	"sort"
	"strings"

	apperrors "doc-qa-api/pkg/errors"
	"doc-qa-api/pkg/logger"
)

// Library 集合管理与文件级操作（列举已上传文件、按文件删除分块）。
type Library struct {
	store     VectorStore
	dimension int
}

// NewLibrary 创建集合管理服务。dimension 为新建集合的向量维度。
func NewLibrary(store VectorStore, dimension int) *Library {
	if dimension <= 0 {
		dimension = 1536
	}
	return &Library{store: store, dimension: dimension}
}

// CreateIndex 按配置维度和 COSINE 度量创建集合。
func (l *Library) CreateIndex(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ErrInvalidParam.WithDetail("index name is required")
	}
	if len(name) > 64 {
		return apperrors.ErrInvalidParam.WithDetail("index name too long")
	}

	exists, err := l.store.HasCollection(ctx, name)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to check index")
	}
	if exists {
		return apperrors.New(apperrors.CodeConflict, "index already exists").WithDetail(name)
	}

	if err := l.store.CreateCollection(ctx, name, l.dimension); err != nil {
		return apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to create index")
	}
	logger.Info(ctx, "index created", "index", name, "dimension", l.dimension)
	return nil
}

// DeleteIndex 删除集合。
func (l *Library) DeleteIndex(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.ErrInvalidParam.WithDetail("index name is required")
	}

	exists, err := l.store.HasCollection(ctx, name)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to check index")
	}
	if !exists {
		return apperrors.ErrIndexNotFound.WithDetail(name)
	}

	if err := l.store.DropCollection(ctx, name); err != nil {
		return apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to delete index")
	}
	logger.Info(ctx, "index deleted", "index", name)
	return nil
}

// ListIndexes 列举集合名，可按名称前缀过滤（多租户命名约定）。
func (l *Library) ListIndexes(ctx context.Context, prefix string) ([]string, error) {
	names, err := l.store.ListCollections(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to list indexes")
	}

	prefix = strings.TrimSpace(prefix)
	out := make([]string, 0, len(names))
	for _, n := range names {
		if prefix != "" && !strings.HasPrefix(n, prefix) {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out, nil
}

// ListFiles 返回集合内已上传文件的去重标题列表。
// 通过分页列举全部 ID 后按 ID 取回记录的 title 元数据。
func (l *Library) ListFiles(ctx context.Context, collection string) ([]string, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("index name is required")
	}

	ids, err := l.store.ListIDs(ctx, collection)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to list record ids")
	}
	if len(ids) == 0 {
		return []string{}, nil
	}

	records, err := l.store.FetchByIDs(ctx, collection, ids)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to fetch records")
	}

	seen := make(map[string]struct{}, len(records))
	titles := make([]string, 0, len(records))
	for _, r := range records {
		if r.Title == "" {
			continue
		}
		if _, ok := seen[r.Title]; ok {
			continue
		}
		seen[r.Title] = struct{}{}
		titles = append(titles, r.Title)
	}
	sort.Strings(titles)
	return titles, nil
}

// DeleteFile 删除属于一个上传文件的全部分块，返回被删除的 ID 列表。
// 匹配要求 ID 分隔符边界（"{fileID}-"）：删除 "report.pdf"
// 不会波及 "report.pdf.bak" 的分块。
func (l *Library) DeleteFile(ctx context.Context, collection, fileID string) ([]string, error) {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("index name is required")
	}
	fileID = strings.TrimSpace(fileID)
	if fileID == "" {
		return nil, apperrors.ErrInvalidParam.WithDetail("file id is required")
	}

	ids, err := l.store.ListIDs(ctx, collection)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to list record ids")
	}

	prefix := fileID + "-"
	matched := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			matched = append(matched, id)
		}
	}
	if len(matched) == 0 {
		return nil, apperrors.New(apperrors.CodeNotFound, "no matching files found for deletion").WithDetail(fileID)
	}

	if err := l.store.DeleteByIDs(ctx, collection, matched); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeVectorDBError, "failed to delete records")
	}

	logger.Info(ctx, "file deleted", "index", collection, "file", fileID, "chunks", len(matched))
	return matched, nil
}
