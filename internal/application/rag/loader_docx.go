package rag

import (
	"archive/zip"
	"bytes"
	"io"
	"regexp"
	"strings"

	apperrors "doc-qa-api/pkg/errors"
)

// docxDocumentXMLPath DOCX 包内主文档路径
const docxDocumentXMLPath = "word/document.xml"

// wpTag 匹配一个段落 <w:p ...>...</w:p>
var wpTag = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>`)

// wtTag 匹配文本 run <w:t>text</w:t>（含任意属性）
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// loadDocx 解析 DOCX（OOXML zip 内的 word/document.xml），每个段落一个片段。
// 只取 <w:t> 节点文本，段落内 run 以空格连接；空段落跳过。
func loadDocx(content []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "failed to open DOCX: not a zip")
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name != docxDocumentXMLPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "failed to open DOCX document.xml")
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "failed to read DOCX document.xml")
		}
		break
	}
	if docXML == nil {
		return nil, apperrors.New(apperrors.CodeInvalidParam, "DOCX has no word/document.xml")
	}

	paragraphs := wpTag.FindAllString(string(docXML), -1)
	segments := make([]Segment, 0, len(paragraphs))
	for i, p := range paragraphs {
		runs := wtTag.FindAllStringSubmatch(p, -1)
		if len(runs) == 0 {
			continue
		}
		parts := make([]string, 0, len(runs))
		for _, r := range runs {
			parts = append(parts, r[1])
		}
		text := strings.TrimSpace(strings.Join(parts, " "))
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			PageContent: text,
			Metadata:    map[string]any{"paragraph": i},
		})
	}

	return &Document{Segments: segments}, nil
}
