package rag

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "doc-qa-api/pkg/errors"
)

// loadCSV 解析 CSV，每行一个片段。行内字段以逗号还原为一行文本。
// 行片段在分块阶段按固定批大小合并。
func loadCSV(content []byte) (*Document, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1

	var segments []Segment
	row := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam,
				fmt.Sprintf("failed to parse CSV row %d", row+1))
		}
		segments = append(segments, Segment{
			PageContent: strings.Join(record, ","),
			Metadata:    map[string]any{"row": row},
		})
		row++
	}

	return &Document{Segments: segments, Tabular: true}, nil
}

// loadXlsx 解析 XLSX，每行一个片段，单元格以空格连接。
// 片段记录 sheetName 和行号，行批分块时写入 loc 行范围。
func loadXlsx(content []byte) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "failed to open XLSX")
	}
	defer f.Close()

	var segments []Segment
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam,
				fmt.Sprintf("failed to read XLSX sheet %q", sheet))
		}
		for i, row := range rows {
			segments = append(segments, Segment{
				PageContent: strings.Join(row, " "),
				Metadata: map[string]any{
					"sheetName": sheet,
					"row":       i,
				},
			})
		}
	}

	return &Document{Segments: segments, Tabular: true}, nil
}
