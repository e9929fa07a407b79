package llm

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net/http"
	"time"

	"cnb.cool/zhiqiangwang/pkg/logx"
	openai "github.com/sashabaranov/go-openai"
)

// 请求参数常量
const (
	// temperature 固定采样温度
	temperature = 0.75
)

// OpenAIClient OpenAI 兼容的客户端
type OpenAIClient struct {
	config *Config
	client *openai.Client
}

// NewOpenAIClient 创建新的 OpenAI 客户端
func NewOpenAIClient(config *Config) *OpenAIClient {
	clientConfig := openai.DefaultConfig(config.APIKey)

	// 配置 BaseURL
	if config.BaseURL != "" {
		// 直接使用配置的 BaseURL,不自动添加 /v1
		// 因为不同的 API 提供商可能有不同的路径格式
		clientConfig.BaseURL = config.BaseURL
		logx.Debug("OpenAI client BaseURL: %s", config.BaseURL)
	}

	// 配置 HTTP 客户端
	// 关键:禁用 HTTP/2,强制使用 HTTP/1.1 以避免 INTERNAL_ERROR
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		// 禁用 HTTP/2 - 设置空的 TLSNextProto map 会阻止 HTTP/2
		TLSNextProto: make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
	}

	clientConfig.HTTPClient = &http.Client{
		Transport: transport,
		Timeout:   600 * time.Second,
	}

	client := openai.NewClientWithConfig(clientConfig)

	logx.Info("OpenAI client initialized, model %s", config.Model)

	return &OpenAIClient{
		config: config,
		client: client,
	}
}

// buildRequest 构建完成请求
func (c *OpenAIClient) buildRequest(messages []Message, maxTokens int, stream bool) openai.ChatCompletionRequest {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	return openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    openaiMessages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Stream:      stream,
	}
}

// Chat 非流式对话，返回完整回复文本
// 提供方未返回任何内容时返回空字符串。失败不重试
func (c *OpenAIClient) Chat(ctx context.Context, messages []Message, maxTokens int) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(messages, maxTokens, false))
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ChatStream 流式对话
// 建流同步进行:提供方在产出任何内容前失败时直接返回错误,不开通道
// 建流成功后,增量片段按序写入返回的通道,正常结束或中途出错都只关闭通道
// (流一旦开始,上层无法再回退为结构化错误响应)
func (c *OpenAIClient) ChatStream(ctx context.Context, messages []Message, maxTokens int) (<-chan string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.buildRequest(messages, maxTokens, true))
	if err != nil {
		logx.Error("Failed to create chat completion stream %v", err)
		return nil, err
	}

	contentCh := make(chan string, 10)

	go func() {
		defer close(contentCh)
		defer func() { _ = stream.Close() }()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				logx.Debug("Stream completed successfully")
				return
			}
			if err != nil {
				// 流中途出错只能中断，已发出的片段保持有效
				logx.Error("Stream error %v", err)
				return
			}

			if len(response.Choices) > 0 {
				delta := response.Choices[0].Delta.Content
				if delta != "" {
					contentCh <- delta
				}
			}
		}
	}()

	return contentCh, nil
}
