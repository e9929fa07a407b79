package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abhi01978/Panda/internal/config"
	"github.com/abhi01978/Panda/internal/llm"
	"github.com/abhi01978/Panda/internal/model"
	"github.com/abhi01978/Panda/internal/service"
)

// ChatHandler 处理 AI 对话请求
type ChatHandler struct {
	config              *config.Config
	relay               llm.Relay
	conversationService *service.ConversationService
}

// NewChatHandler 创建 ChatHandler
func NewChatHandler(cfg *config.Config, db *gorm.DB) *ChatHandler {
	var relay llm.Relay
	if cfg.LLM.Enabled {
		relay = llm.NewOpenAIClient(&llm.Config{
			Model:   cfg.LLM.Model,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
		})
	}

	return &ChatHandler{
		config:              cfg,
		relay:               relay,
		conversationService: service.NewConversationService(db),
	}
}

// ChatMessage 对话消息
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest 对话请求
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	ChatID   string        `json:"chatId,omitempty"` // 所属会话ID，为空则新建会话
}

// StreamChunk 流式响应块
type StreamChunk struct {
	Content string `json:"content"`
}

// Completions 处理对话请求 (支持流式和非流式)
// 流程: 校验 -> 预算估算 -> 调用 LLM -> 发送响应 -> 落库
func (h *ChatHandler) Completions(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Message: "请求参数错误: " + err.Error(),
		})
		return
	}

	if len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, Response{
			Code:    400,
			Message: "消息列表不能为空",
		})
		return
	}

	// 从认证中间件取当前用户
	username := c.GetString("username")

	// 检查 LLM 配置
	if !h.config.LLM.Enabled || h.relay == nil {
		c.JSON(http.StatusServiceUnavailable, Response{
			Code:    503,
			Message: "LLM 服务未启用",
		})
		return
	}

	// 转换为 LLM 消息格式
	llmMessages := make([]llm.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		llmMessages = append(llmMessages, llm.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	// 根据已有消息长度推算本次响应的 token 预算
	maxTokens := llm.ResponseBudget(llmMessages)
	logx.Info("Calling LLM with %d messages in history, max_tokens %d", len(llmMessages), maxTokens)

	if req.Stream {
		h.streamCompletion(c, username, &req, llmMessages, maxTokens)
	} else {
		h.wholeCompletion(c, username, &req, llmMessages, maxTokens)
	}
}

// wholeCompletion 非流式对话：等完整回复后一次性返回
func (h *ChatHandler) wholeCompletion(c *gin.Context, username string, req *ChatRequest, messages []llm.Message, maxTokens int) {
	reply, err := h.relay.Chat(c.Request.Context(), messages, maxTokens)
	if err != nil {
		logx.Error("Failed to call LLM: %v", err)
		c.JSON(http.StatusBadGateway, Response{
			Code:    502,
			Message: llm.FriendlyError(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reply": reply,
	})

	// 响应已经发出，落库失败只记录日志，不再影响调用方
	h.persistExchange(username, req, reply)
}

// streamCompletion 流式对话：片段边到达边下发，同时在本地累积
// 建流失败发生在响应提交之前，仍可返回结构化错误
// 流一旦开始，出错只能提前结束，无法再转为错误响应体
func (h *ChatHandler) streamCompletion(c *gin.Context, username string, req *ChatRequest, messages []llm.Message, maxTokens int) {
	responseCh, err := h.relay.ChatStream(c.Request.Context(), messages, maxTokens)
	if err != nil {
		logx.Error("Failed to call LLM: %v", err)
		c.JSON(http.StatusBadGateway, Response{
			Code:    502,
			Message: llm.FriendlyError(err),
		})
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Message: "Streaming not supported",
		})
		return
	}

	// 用于收集完整回复，最终落库以本地累积为准
	var aiResponse strings.Builder

	// 调用方断开后继续读完通道，累积结果照常落库
	for content := range responseCh {
		if content == "" {
			continue
		}

		aiResponse.WriteString(content)

		chunkJSON, err := json.Marshal(StreamChunk{Content: content})
		if err != nil {
			logx.Error("Failed to marshal chunk: %v", err)
			continue
		}

		// 发送 SSE 数据，一个片段一个事件
		fmt.Fprintf(c.Writer, "data: %s\n\n", string(chunkJSON))
		flusher.Flush()
	}

	// 发送结束标记
	fmt.Fprintf(c.Writer, "data: [DONE]\n\n")
	flusher.Flush()

	h.persistExchange(username, req, aiResponse.String())
}

// persistExchange 将本轮交互写入会话记录
// 此时响应均已提交，任何失败只通过日志上报
func (h *ChatHandler) persistExchange(username string, req *ChatRequest, reply string) {
	messages := make([]model.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, model.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	if req.ChatID == "" {
		if _, err := h.conversationService.Create(username, messages, reply); err != nil {
			logx.Error("Failed to save conversation: %v", err)
		}
		return
	}

	if err := h.conversationService.Append(username, req.ChatID, messages, reply); err != nil {
		logx.Error("Failed to append to conversation %s: %v", req.ChatID, err)
	}
}
