package llm

import "context"

// Config LLM 配置
type Config struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// Message 消息结构
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Relay 完成中继接口
// chat handler 依赖此接口而非具体客户端，便于测试时注入假实现
type Relay interface {
	// Chat 非流式对话，返回完整回复文本
	Chat(ctx context.Context, messages []Message, maxTokens int) (string, error)
	// ChatStream 流式对话
	// 建流失败时返回错误且不开通道；成功后片段按序写入通道，结束时关闭
	ChatStream(ctx context.Context, messages []Message, maxTokens int) (<-chan string, error)
}
