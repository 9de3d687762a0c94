// Package dto 提供 HTTP 层数据传输对象
package dto

// UploadResponse 文档上传响应
type UploadResponse struct {
	FileName   string `json:"file_name"`
	ChunkCount int    `json:"chunk_count"`
}

// FileListResponse 已上传文件列表响应
type FileListResponse struct {
	Files []string `json:"files"`
}

// DeleteFileRequest 按文件删除分块请求
type DeleteFileRequest struct {
	File string `json:"file" binding:"required"`
}

// DeleteFileResponse 按文件删除分块响应
type DeleteFileResponse struct {
	DeletedFiles []string `json:"deleted_files"`
}
