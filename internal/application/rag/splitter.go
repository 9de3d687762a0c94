package rag

import (
	"fmt"
	"strings"
)

// 分块默认参数。
// 原则：默认值集中一处，其他取值走配置。
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 100
	DefaultRowBatchSize = 1000
)

// splitRunes 把文本切为固定 rune 窗口，步长 = 窗口 - 重叠。
// 末窗可短于窗口大小；不产出空窗口；不丢字符。
func splitRunes(s string, maxRunes int, overlapRunes int) []string {
	if s == "" {
		return nil
	}
	if maxRunes <= 0 {
		return []string{s}
	}
	if overlapRunes < 0 {
		overlapRunes = 0
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return []string{s}
	}
	step := maxRunes - overlapRunes
	if step <= 0 {
		step = maxRunes
	}

	out := make([]string, 0, (len(runes)/step)+1)
	for start := 0; start < len(runes); start += step {
		end := start + maxRunes
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end >= len(runes) {
			break
		}
	}
	return out
}

// chunkProse 把全部片段拼接为一个长串后按字符窗口切块。
func chunkProse(segments []Segment, chunkSize, chunkOverlap int) []Chunk {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.PageContent)
	}
	text := strings.Join(parts, "\n")
	if strings.TrimSpace(text) == "" {
		return nil
	}

	windows := splitRunes(text, chunkSize, chunkOverlap)
	chunks := make([]Chunk, 0, len(windows))
	for _, w := range windows {
		chunks = append(chunks, Chunk{PageContent: w, Metadata: map[string]any{}})
	}
	return chunks
}

// chunkRows 把行级片段按固定批大小合并，批内行以换行连接。
// 批不跨 sheet；末批可小于批大小但非空。
// 每批标记 batchNumber；带 sheetName 的行额外标记 loc 行范围。
func chunkRows(segments []Segment, batchSize int) []Chunk {
	if batchSize <= 0 {
		batchSize = DefaultRowBatchSize
	}

	var chunks []Chunk
	batchNumber := 0

	for start := 0; start < len(segments); {
		sheet, _ := segments[start].Metadata["sheetName"].(string)

		// 同一 sheet 内连续行构成一批
		end := start
		for end < len(segments) && end-start < batchSize {
			s, _ := segments[end].Metadata["sheetName"].(string)
			if s != sheet {
				break
			}
			end++
		}

		lines := make([]string, 0, end-start)
		for _, seg := range segments[start:end] {
			lines = append(lines, seg.PageContent)
		}

		batchNumber++
		meta := map[string]any{"batchNumber": batchNumber}
		if sheet != "" {
			firstRow, _ := segments[start].Metadata["row"].(int)
			lastRow, _ := segments[end-1].Metadata["row"].(int)
			meta["sheetName"] = sheet
			meta["loc"] = fmt.Sprintf("%d-%d", firstRow, lastRow)
		}

		chunks = append(chunks, Chunk{
			PageContent: strings.Join(lines, "\n"),
			Metadata:    meta,
		})
		start = end
	}

	return chunks
}
