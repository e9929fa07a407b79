package model

import "time"

// 消息角色
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system" // 仅作为 LLM 输入，不落库
)

// Message 会话消息模型，只增不改
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at"`

	ConversationID uint   `json:"-" gorm:"index"`            // 所属会话ID
	Role           string `json:"role" gorm:"size:20"`       // "user" | "assistant"
	Content        string `json:"content" gorm:"type:text"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "messages"
}
