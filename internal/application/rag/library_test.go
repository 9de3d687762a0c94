package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "doc-qa-api/pkg/errors"
)

func TestLibraryCreateIndex(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with configured dimension", func(t *testing.T) {
		store := newFakeStore()
		l := NewLibrary(store, 1536)
		require.NoError(t, l.CreateIndex(ctx, "docs"))
		assert.Equal(t, 1536, store.collections["docs"])
	})

	t.Run("duplicate name conflicts", func(t *testing.T) {
		store := newFakeStore()
		l := NewLibrary(store, 1536)
		require.NoError(t, l.CreateIndex(ctx, "docs"))
		err := l.CreateIndex(ctx, "docs")
		assertAppCode(t, err, apperrors.CodeConflict)
	})

	t.Run("name validation", func(t *testing.T) {
		l := NewLibrary(newFakeStore(), 1536)
		assertAppCode(t, l.CreateIndex(ctx, "  "), apperrors.CodeInvalidParam)
		assertAppCode(t, l.CreateIndex(ctx, strings.Repeat("x", 65)), apperrors.CodeInvalidParam)
	})
}

func TestLibraryDeleteIndex(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := NewLibrary(store, 1536)

	require.NoError(t, l.CreateIndex(ctx, "docs"))
	require.NoError(t, l.DeleteIndex(ctx, "docs"))
	_, ok := store.collections["docs"]
	assert.False(t, ok)

	// 再删除同名集合报未找到
	assertAppCode(t, l.DeleteIndex(ctx, "docs"), apperrors.CodeIndexNotFound)
}

func TestLibraryListIndexes(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := NewLibrary(store, 1536)

	for _, name := range []string{"team_a_docs", "team_b_docs", "team_a_faq"} {
		require.NoError(t, l.CreateIndex(ctx, name))
	}

	t.Run("no prefix returns all sorted", func(t *testing.T) {
		got, err := l.ListIndexes(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"team_a_docs", "team_a_faq", "team_b_docs"}, got)
	})

	t.Run("prefix filters", func(t *testing.T) {
		got, err := l.ListIndexes(ctx, "team_a_")
		require.NoError(t, err)
		assert.Equal(t, []string{"team_a_docs", "team_a_faq"}, got)
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		got, err := l.ListIndexes(ctx, "zzz")
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})
}

func TestCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := NewLibrary(store, 1536)
	x := NewIndexer(&fakeEmbedder{}, store, 1000, 100, 1000)

	require.NoError(t, l.CreateIndex(ctx, "demo"))

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		_, err := x.Ingest(ctx, UploadedFile{
			OriginalName: name,
			MIMEType:     "text/plain",
			Content:      []byte("content of " + name),
		}, "demo")
		require.NoError(t, err)
	}

	ids, err := store.ListIDs(ctx, "demo")
	require.NoError(t, err)
	assert.Len(t, ids, 3)

	require.NoError(t, l.DeleteIndex(ctx, "demo"))
	names, err := l.ListIndexes(ctx, "")
	require.NoError(t, err)
	assert.NotContains(t, names, "demo")
}

func seedRecords(t *testing.T, store *fakeStore, collection string, files map[string]int) {
	t.Helper()
	for name, chunks := range files {
		for i := 0; i < chunks; i++ {
			store.records[collection] = append(store.records[collection], &Record{
				ID:    name + "-" + string(rune('0'+i)),
				Title: name,
			})
		}
	}
}

func TestLibraryListFiles(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	l := NewLibrary(store, 1536)

	seedRecords(t, store, "docs", map[string]int{
		"report.pdf": 3,
		"notes.txt":  1,
	})

	files, err := l.ListFiles(ctx, "docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"notes.txt", "report.pdf"}, files)

	t.Run("empty collection returns empty list", func(t *testing.T) {
		files, err := l.ListFiles(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, files)
		assert.NotNil(t, files)
	})
}

func TestLibraryDeleteFile(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes only matching chunks", func(t *testing.T) {
		store := newFakeStore()
		l := NewLibrary(store, 1536)
		seedRecords(t, store, "docs", map[string]int{
			"report.pdf": 2,
			"other.txt":  1,
		})

		deleted, err := l.DeleteFile(ctx, "docs", "report.pdf")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"report.pdf-0", "report.pdf-1"}, deleted)

		remaining, err := store.ListIDs(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, []string{"other.txt-0"}, remaining)
	})

	t.Run("separator boundary protects longer names", func(t *testing.T) {
		store := newFakeStore()
		l := NewLibrary(store, 1536)
		seedRecords(t, store, "docs", map[string]int{
			"report.pdf":     1,
			"report.pdf.bak": 1,
		})

		deleted, err := l.DeleteFile(ctx, "docs", "report.pdf")
		require.NoError(t, err)
		assert.Equal(t, []string{"report.pdf-0"}, deleted)

		remaining, err := store.ListIDs(ctx, "docs")
		require.NoError(t, err)
		assert.Equal(t, []string{"report.pdf.bak-0"}, remaining)
	})

	t.Run("no match reports not found", func(t *testing.T) {
		store := newFakeStore()
		l := NewLibrary(store, 1536)
		seedRecords(t, store, "docs", map[string]int{"a.txt": 1})

		_, err := l.DeleteFile(ctx, "docs", "missing.pdf")
		assertAppCode(t, err, apperrors.CodeNotFound)
	})
}
