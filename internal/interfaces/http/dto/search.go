// Package dto 提供 HTTP 层数据传输对象
package dto

// SearchRequest 检索问答请求
type SearchRequest struct {
	Query string `json:"query" binding:"required,max=5000"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResponse 检索问答响应
type SearchResponse struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}
