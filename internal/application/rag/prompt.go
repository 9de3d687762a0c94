package rag

import "strings"

// BuildPrompt 把召回上下文和问题组装为单条补全提示。
// 模板固定；答案由 LLM 原样返回，不做后处理。
func BuildPrompt(context, question string) string {
	var sb strings.Builder
	sb.Grow(len(context) + len(question) + 96)
	sb.WriteString("Answer the following question based on the context below:\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer:")
	return sb.String()
}
