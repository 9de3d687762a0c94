package rag

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"

	apperrors "doc-qa-api/pkg/errors"
)

// loadPDF 逐页提取 PDF 文本，每页一个片段。
// 空页跳过；后续分块阶段会把所有页拼接为一个长串。
func loadPDF(content []byte) (*Document, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "failed to open PDF")
	}

	numPages := r.NumPage()
	segments := make([]Segment, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam,
				fmt.Sprintf("failed to extract PDF page %d", i))
		}
		segments = append(segments, Segment{
			PageContent: text,
			Metadata:    map[string]any{"page": i},
		})
	}

	return &Document{Segments: segments}, nil
}
