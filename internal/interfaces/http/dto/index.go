// Package dto 提供 HTTP 层数据传输对象
package dto

// CreateIndexRequest 创建集合请求
type CreateIndexRequest struct {
	IndexName string `json:"index_name" binding:"required,max=64"`
}

// IndexListResponse 集合名列表响应
type IndexListResponse struct {
	Indexes []string `json:"indexes"`
}

// IndexOpResponse 集合操作确认响应
type IndexOpResponse struct {
	Index   string `json:"index"`
	Message string `json:"message"`
}
