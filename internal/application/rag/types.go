package rag

// UploadedFile 一次上传请求携带的原始文件。
type UploadedFile struct {
	OriginalName string
	MIMEType     string
	Content      []byte
}

// Segment 加载器产出的文本片段（PDF 页、CSV 行、DOCX 段落等）。
type Segment struct {
	PageContent string
	Metadata    map[string]any
}

// Document 加载结果。Tabular 表示片段是行级数据，
// 分块时走行批策略而不是字符窗口策略。
type Document struct {
	Segments []Segment
	Tabular  bool
}

// Chunk 提交给 Embedding 的有界文本单元。
// 同一文件产出的分块顺序必须稳定：向量记录 ID 按位置生成。
type Chunk struct {
	PageContent string
	Metadata    map[string]any
}

// IngestResult 入库结果
type IngestResult struct {
	FileName   string   `json:"file_name"`
	ChunkCount int      `json:"chunk_count"`
	IDs        []string `json:"ids"`
}

// AnswerResult 问答结果
type AnswerResult struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}
