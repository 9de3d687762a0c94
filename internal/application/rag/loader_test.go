package rag

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "doc-qa-api/pkg/errors"
)

func TestLoadUnsupportedType(t *testing.T) {
	_, err := Load([]byte("binary"), "image/png", "photo.png")
	require.Error(t, err)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeUnsupportedFileType, appErr.Code)
	assert.Equal(t, 400, appErr.HTTPStatus)
	assert.Contains(t, appErr.Detail, "image/png")
	assert.Contains(t, appErr.Detail, "photo.png")
}

func TestNormalizeMIME(t *testing.T) {
	assert.Equal(t, "text/plain", normalizeMIME("text/plain; charset=utf-8"))
	assert.Equal(t, "text/csv", normalizeMIME(" TEXT/CSV "))
	assert.Equal(t, "application/pdf", normalizeMIME("application/pdf"))
}

func TestLoadPlain(t *testing.T) {
	doc, err := Load([]byte("hello world"), "text/plain; charset=utf-8", "note.txt")
	require.NoError(t, err)
	require.Len(t, doc.Segments, 1)
	assert.Equal(t, "hello world", doc.Segments[0].PageContent)
	assert.False(t, doc.Tabular)
}

func TestLoadCSV(t *testing.T) {
	t.Run("each row becomes a segment", func(t *testing.T) {
		input := "name,age\nalice,30\nbob,25\n"
		doc, err := Load([]byte(input), MIMECSV, "people.csv")
		require.NoError(t, err)
		require.Len(t, doc.Segments, 3)
		assert.True(t, doc.Tabular)
		assert.Equal(t, "name,age", doc.Segments[0].PageContent)
		assert.Equal(t, "alice,30", doc.Segments[1].PageContent)
		assert.Equal(t, 2, doc.Segments[2].Metadata["row"])
	})

	t.Run("quoted field with comma stays one field", func(t *testing.T) {
		doc, err := Load([]byte("a,\"b,c\"\n"), MIMECSV, "q.csv")
		require.NoError(t, err)
		require.Len(t, doc.Segments, 1)
		assert.Equal(t, "a,b,c", doc.Segments[0].PageContent)
	})

	t.Run("ragged rows are accepted", func(t *testing.T) {
		doc, err := Load([]byte("a,b,c\nd\n"), MIMECSV, "r.csv")
		require.NoError(t, err)
		assert.Len(t, doc.Segments, 2)
	})

	t.Run("empty file yields no segments", func(t *testing.T) {
		doc, err := Load([]byte(""), MIMECSV, "empty.csv")
		require.NoError(t, err)
		assert.Empty(t, doc.Segments)
	})
}

// buildDocx 构造一个最小 DOCX 包
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestLoadDocx(t *testing.T) {
	t.Run("paragraphs become segments with runs joined", func(t *testing.T) {
		xml := `<w:document><w:body>` +
			`<w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t xml:space="preserve">World</w:t></w:r></w:p>` +
			`<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>` +
			`<w:p></w:p>` +
			`</w:body></w:document>`
		doc, err := Load(buildDocx(t, xml), MIMEDocx, "letter.docx")
		require.NoError(t, err)
		require.Len(t, doc.Segments, 2)
		assert.Equal(t, "Hello World", doc.Segments[0].PageContent)
		assert.Equal(t, "Second paragraph", doc.Segments[1].PageContent)
		assert.False(t, doc.Tabular)
	})

	t.Run("legacy doc mime uses the same parser", func(t *testing.T) {
		xml := `<w:document><w:body><w:p><w:r><w:t>old format</w:t></w:r></w:p></w:body></w:document>`
		doc, err := Load(buildDocx(t, xml), MIMEDoc, "legacy.doc")
		require.NoError(t, err)
		require.Len(t, doc.Segments, 1)
	})

	t.Run("not a zip is rejected", func(t *testing.T) {
		_, err := Load([]byte("plain bytes"), MIMEDocx, "broken.docx")
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)
	})

	t.Run("zip without document.xml is rejected", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		w, err := zw.Create("other.txt")
		require.NoError(t, err)
		_, _ = w.Write([]byte("x"))
		require.NoError(t, zw.Close())

		_, err = Load(buf.Bytes(), MIMEDocx, "odd.docx")
		require.Error(t, err)
	})
}

// buildXlsx 用 excelize 构造内存 XLSX
func buildXlsx(t *testing.T, sheets map[string][][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestLoadXlsx(t *testing.T) {
	t.Run("rows become segments with sheet metadata", func(t *testing.T) {
		content := buildXlsx(t, map[string][][]any{
			"Data": {
				{"name", "score"},
				{"alice", 30},
			},
		})
		doc, err := Load(content, MIMEXlsx, "scores.xlsx")
		require.NoError(t, err)
		require.Len(t, doc.Segments, 2)
		assert.True(t, doc.Tabular)
		assert.Equal(t, "name score", doc.Segments[0].PageContent)
		assert.Equal(t, "alice 30", doc.Segments[1].PageContent)
		assert.Equal(t, "Data", doc.Segments[0].Metadata["sheetName"])
		assert.Equal(t, 1, doc.Segments[1].Metadata["row"])
	})

	t.Run("invalid xlsx content is rejected", func(t *testing.T) {
		_, err := Load([]byte("not an xlsx"), MIMEXlsx, "bad.xlsx")
		require.Error(t, err)
		var appErr *apperrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)
	})
}

func TestLoadPDFInvalid(t *testing.T) {
	_, err := Load([]byte("not a pdf"), MIMEPDF, "bad.pdf")
	require.Error(t, err)
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidParam, appErr.Code)
}
