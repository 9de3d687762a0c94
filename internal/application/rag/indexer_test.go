package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "doc-qa-api/pkg/errors"
)

func TestIndexerIngestPlainText(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	x := NewIndexer(embedder, store, 0, 0, 0)

	file := UploadedFile{
		OriginalName: "note.txt",
		MIMEType:     "text/plain",
		Content:      []byte("some useful text"),
	}
	result, err := x.Ingest(context.Background(), file, "docs")
	require.NoError(t, err)

	assert.Equal(t, "note.txt", result.FileName)
	assert.Equal(t, 1, result.ChunkCount)
	assert.Equal(t, []string{"note.txt-0"}, result.IDs)

	require.Len(t, store.records["docs"], 1)
	rec := store.records["docs"][0]
	assert.Equal(t, "note.txt-0", rec.ID)
	assert.Equal(t, "note.txt", rec.Title)
	assert.Equal(t, "some useful text", rec.PageContent)
}

func TestIndexerIngestPositionalIDs(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	x := NewIndexer(embedder, store, 1000, 100, 1000)

	file := UploadedFile{
		OriginalName: "big.txt",
		MIMEType:     "text/plain",
		Content:      []byte(strings.Repeat("a", 2500)),
	}
	result, err := x.Ingest(context.Background(), file, "docs")
	require.NoError(t, err)

	require.Equal(t, 3, result.ChunkCount)
	for i, id := range result.IDs {
		assert.Equal(t, fmt.Sprintf("big.txt-%d", i), id)
	}

	// 重复入库产生相同 ID：覆盖而不是追加新身份
	again, err := x.Ingest(context.Background(), file, "docs")
	require.NoError(t, err)
	assert.Equal(t, result.IDs, again.IDs)
}

func TestIndexerIngestSingleEmbeddingCall(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	x := NewIndexer(embedder, store, 1000, 100, 1000)

	rows := make([]string, 25)
	for i := range rows {
		rows[i] = fmt.Sprintf("r%d,v%d", i, i)
	}
	file := UploadedFile{
		OriginalName: "data.csv",
		MIMEType:     MIMECSV,
		Content:      []byte(strings.Join(rows, "\n")),
	}

	result, err := x.Ingest(context.Background(), file, "docs")
	require.NoError(t, err)

	// 行批策略：25 行一个批
	assert.Equal(t, 1, result.ChunkCount)
	// 全部分块一次批量 Embedding
	require.Len(t, embedder.calls, 1)
	assert.Len(t, embedder.calls[0], 1)
}

func TestIndexerIngestRowBatching(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := newFakeStore()
	x := NewIndexer(embedder, store, 1000, 100, 10)

	rows := make([]string, 25)
	for i := range rows {
		rows[i] = fmt.Sprintf("row%d", i)
	}
	file := UploadedFile{
		OriginalName: "data.csv",
		MIMEType:     MIMECSV,
		Content:      []byte(strings.Join(rows, "\n")),
	}

	result, err := x.Ingest(context.Background(), file, "docs")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ChunkCount) // ceil(25/10)
	assert.Equal(t, "data.csv-2", result.IDs[2])
}

func TestIndexerIngestValidation(t *testing.T) {
	x := NewIndexer(&fakeEmbedder{}, newFakeStore(), 0, 0, 0)
	ctx := context.Background()

	t.Run("missing collection", func(t *testing.T) {
		_, err := x.Ingest(ctx, UploadedFile{OriginalName: "a.txt", MIMEType: "text/plain", Content: []byte("x")}, "  ")
		assertAppCode(t, err, apperrors.CodeInvalidParam)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := x.Ingest(ctx, UploadedFile{OriginalName: "a.txt", MIMEType: "text/plain"}, "docs")
		assertAppCode(t, err, apperrors.CodeFileRequired)
	})

	t.Run("unsupported mime", func(t *testing.T) {
		_, err := x.Ingest(ctx, UploadedFile{OriginalName: "a.bin", MIMEType: "application/octet-stream", Content: []byte("x")}, "docs")
		assertAppCode(t, err, apperrors.CodeUnsupportedFileType)
	})

	t.Run("whitespace only file yields no chunks", func(t *testing.T) {
		_, err := x.Ingest(ctx, UploadedFile{OriginalName: "a.txt", MIMEType: "text/plain", Content: []byte("   \n ")}, "docs")
		assertAppCode(t, err, apperrors.CodeNoDocuments)
	})
}

func TestIndexerIngestEmbedFailureWritesNothing(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("upstream down")}
	store := newFakeStore()
	x := NewIndexer(embedder, store, 0, 0, 0)

	_, err := x.Ingest(context.Background(),
		UploadedFile{OriginalName: "a.txt", MIMEType: "text/plain", Content: []byte("hello")}, "docs")
	assertAppCode(t, err, apperrors.CodeEmbeddingFailed)
	assert.Empty(t, store.records["docs"])
}

func TestIndexerIngestVectorCountMismatch(t *testing.T) {
	embedder := &fakeEmbedder{short: true}
	store := newFakeStore()
	x := NewIndexer(embedder, store, 1000, 100, 1000)

	_, err := x.Ingest(context.Background(),
		UploadedFile{OriginalName: "big.txt", MIMEType: "text/plain", Content: []byte(strings.Repeat("b", 2500))}, "docs")
	assertAppCode(t, err, apperrors.CodeEmbeddingFailed)
	assert.Empty(t, store.records["docs"])
}

func TestIndexerIngestUpsertFailure(t *testing.T) {
	store := newFakeStore()
	store.upsertErr = errors.New("milvus unavailable")
	x := NewIndexer(&fakeEmbedder{}, store, 0, 0, 0)

	_, err := x.Ingest(context.Background(),
		UploadedFile{OriginalName: "a.txt", MIMEType: "text/plain", Content: []byte("hello")}, "docs")
	assertAppCode(t, err, apperrors.CodeVectorDBError)
}

// assertAppCode 断言错误为指定业务码的应用错误
func assertAppCode(t *testing.T, err error, code apperrors.ErrorCode) {
	t.Helper()
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
