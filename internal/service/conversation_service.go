package service

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/abhi01978/Panda/internal/model"
)

// ErrConversationNotFound 会话不存在
// 会话属于他人时同样返回该错误，对外不区分"不存在"与"无权限"，避免泄露资源是否存在
var ErrConversationNotFound = errors.New("conversation not found")

// 列表最多返回的会话数
const maxListLimit = 5

// 标题截断长度（按可见字符计）
const titleMaxRunes = 50

// ConversationService 会话服务
// 所有操作都以所属用户为维度，会话只能通过 (convID, username) 配对解析
type ConversationService struct {
	db *gorm.DB
}

// NewConversationService 创建会话服务实例
func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{db: db}
}

// deriveTitle 从首条用户消息推导会话标题
func deriveTitle(messages []model.Message) string {
	for _, msg := range messages {
		if msg.Role == model.RoleUser {
			runes := []rune(msg.Content)
			if len(runes) > titleMaxRunes {
				return string(runes[:titleMaxRunes]) + "..."
			}
			return msg.Content
		}
	}
	return "New Chat"
}

// Create 创建新会话并落库全部消息及末尾的 assistant 回复
func (s *ConversationService) Create(username string, messages []model.Message, reply string) (*model.Conversation, error) {
	now := time.Now()
	conversation := &model.Conversation{
		ConvID:        uuid.NewString(),
		Username:      username,
		Title:         deriveTitle(messages),
		LastMessageAt: now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conversation).Error; err != nil {
			return err
		}

		rows := make([]model.Message, 0, len(messages)+1)
		for _, msg := range messages {
			rows = append(rows, model.Message{
				ConversationID: conversation.ID,
				Role:           msg.Role,
				Content:        msg.Content,
			})
		}
		rows = append(rows, model.Message{
			ConversationID: conversation.ID,
			Role:           model.RoleAssistant,
			Content:        reply,
		})

		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return conversation, nil
}

// Append 向已有会话追加最近一条用户消息和 assistant 回复
// 只取 messages 中最后一条 user 角色的消息，更早的未落库消息会被丢弃
func (s *ConversationService) Append(username, convID string, messages []model.Message, reply string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		conversation, err := s.findOwned(tx, username, convID)
		if err != nil {
			return err
		}

		rows := make([]model.Message, 0, 2)
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == model.RoleUser {
				rows = append(rows, model.Message{
					ConversationID: conversation.ID,
					Role:           model.RoleUser,
					Content:        messages[i].Content,
				})
				break
			}
		}
		rows = append(rows, model.Message{
			ConversationID: conversation.ID,
			Role:           model.RoleAssistant,
			Content:        reply,
		})

		if err := tx.Create(&rows).Error; err != nil {
			return err
		}

		// 刷新最后消息时间
		return tx.Model(&model.Conversation{}).
			Where("id = ?", conversation.ID).
			Update("last_message_at", time.Now()).Error
	})
}

// List 列出用户最近的会话，按最后消息时间倒序，最多 maxListLimit 条
func (s *ConversationService) List(username string, limit int) ([]model.ConversationSummary, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	var conversations []model.Conversation
	err := s.db.Where("username = ?", username).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ConversationSummary, 0, len(conversations))
	for _, conv := range conversations {
		summaries = append(summaries, model.ConversationSummary{
			ID:        conv.ConvID,
			Title:     conv.Title,
			UpdatedAt: conv.LastMessageAt,
		})
	}
	return summaries, nil
}

// GetMessages 获取会话的全部消息，按写入顺序排列
func (s *ConversationService) GetMessages(username, convID string) ([]model.Message, error) {
	conversation, err := s.findOwned(s.db, username, convID)
	if err != nil {
		return nil, err
	}

	var messages []model.Message
	err = s.db.Where("conversation_id = ?", conversation.ID).
		Order("id ASC").
		Find(&messages).Error
	return messages, err
}

// Delete 删除会话及其全部消息
func (s *ConversationService) Delete(username, convID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		conversation, err := s.findOwned(tx, username, convID)
		if err != nil {
			return err
		}

		// 删除会话下的所有消息
		if err := tx.Where("conversation_id = ?", conversation.ID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		// 删除会话
		return tx.Delete(&model.Conversation{}, conversation.ID).Error
	})
}

// findOwned 按 (convID, username) 配对解析会话
func (s *ConversationService) findOwned(tx *gorm.DB, username, convID string) (*model.Conversation, error) {
	var conversation model.Conversation
	err := tx.Where("conv_id = ? AND username = ?", convID, username).First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}
