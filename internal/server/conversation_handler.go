package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abhi01978/Panda/internal/service"
)

// ConversationHandler 会话处理器
type ConversationHandler struct {
	conversationService *service.ConversationService
}

// NewConversationHandler 创建会话处理器
func NewConversationHandler(db *gorm.DB) *ConversationHandler {
	return &ConversationHandler{
		conversationService: service.NewConversationService(db),
	}
}

// Message 消息视图
type Message struct {
	Role      string `json:"role"` // "user" or "assistant"
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// ListConversations 列出当前用户最近的会话
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	username := c.GetString("username")

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))

	conversations, err := h.conversationService.List(username, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Message: "获取会话列表失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// GetConversation 获取会话的完整消息记录
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	username := c.GetString("username")
	convID := c.Param("id")

	chatLogs, err := h.conversationService.GetMessages(username, convID)
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, Response{
				Code:    404,
				Message: "会话不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Message: "获取会话消息失败: " + err.Error(),
		})
		return
	}

	// 转换消息格式
	messages := make([]Message, 0, len(chatLogs))
	for _, log := range chatLogs {
		messages = append(messages, Message{
			Role:      log.Role,
			Content:   log.Content,
			Timestamp: log.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	c.JSON(http.StatusOK, messages)
}

// DeleteConversation 删除会话
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	username := c.GetString("username")
	convID := c.Param("id")

	if err := h.conversationService.Delete(username, convID); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			c.JSON(http.StatusNotFound, Response{
				Code:    404,
				Message: "会话不存在",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{
			Code:    500,
			Message: "删除会话失败: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Code:    200,
		Message: "success",
	})
}
