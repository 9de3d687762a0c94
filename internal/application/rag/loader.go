package rag

import (
	"fmt"
	"mime"
	"strings"

	apperrors "doc-qa-api/pkg/errors"
)

// 支持的 MIME 类型
const (
	MIMEPDF   = "application/pdf"
	MIMECSV   = "text/csv"
	MIMEDocx  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDoc   = "application/msword"
	MIMEPlain = "text/plain"
	MIMEXlsx  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Load 将上传的字节流按声明的 MIME 类型解析为有序文本片段。
// 不支持的类型在任何外部调用发生前返回 UnsupportedFileType。
func Load(content []byte, mimeType, originalName string) (*Document, error) {
	mt := normalizeMIME(mimeType)

	switch mt {
	case MIMEPDF:
		return loadPDF(content)
	case MIMECSV:
		return loadCSV(content)
	case MIMEDocx, MIMEDoc:
		return loadDocx(content)
	case MIMEPlain:
		return loadPlain(content)
	case MIMEXlsx:
		return loadXlsx(content)
	default:
		return nil, apperrors.ErrUnsupportedFileType.WithDetail(
			fmt.Sprintf("mime type %q is not supported (file %q)", mimeType, originalName))
	}
}

// normalizeMIME 去掉参数部分并统一小写（如 "text/plain; charset=utf-8"）。
func normalizeMIME(mimeType string) string {
	mt, _, err := mime.ParseMediaType(strings.TrimSpace(mimeType))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return mt
}

// loadPlain 纯文本：整个文件即单一片段。
func loadPlain(content []byte) (*Document, error) {
	return &Document{
		Segments: []Segment{{PageContent: string(content)}},
	}, nil
}
