// Package llm 提供 LLM 补全服务客户端
package llm

import (
	"context"
	"fmt"
	"time"

	"doc-qa-api/internal/config"
	"doc-qa-api/pkg/metrics"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Completer 基于 Eino ChatModel 的单提示补全客户端。
// 采样温度和模型在进程启动时固定，请求间不可变。
type Completer struct {
	chatModel   model.BaseChatModel
	modelName   string
	temperature float32
}

// NewCompleter 创建补全客户端（OpenAI 兼容接口）
func NewCompleter(ctx context.Context, cfg *config.LLMConfig) (*Completer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("llm base_url is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm model is required")
	}

	temperature := float32(cfg.Temperature)
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		MaxTokens:   &cfg.MaxTokens,
		Temperature: &temperature,
		Timeout:     cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model: %w", err)
	}

	return &Completer{
		chatModel:   chatModel,
		modelName:   cfg.Model,
		temperature: temperature,
	}, nil
}

// Complete 以固定温度执行单条提示补全，返回模型原文
func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	out, err := c.chatModel.Generate(ctx,
		[]*schema.Message{schema.UserMessage(prompt)},
		model.WithTemperature(c.temperature),
	)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.LLMCallDuration.WithLabelValues(c.modelName).Observe(time.Since(start).Seconds())
	metrics.LLMCallTotal.WithLabelValues(c.modelName, status).Inc()

	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	return out.Content, nil
}
