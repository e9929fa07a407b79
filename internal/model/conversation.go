package model

import "time"

// Conversation 会话模型
type Conversation struct {
	ID        uint       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"-" gorm:"index"`

	ConvID        string    `json:"id" gorm:"uniqueIndex;size:36"`  // 对外暴露的会话ID (uuid)
	Username      string    `json:"username" gorm:"index;size:100"` // 所属用户，创建后不可变更
	Title         string    `json:"title" gorm:"size:255"`          // 会话标题
	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`   // 最后消息时间，用于排序
}

// TableName 指定表名
func (Conversation) TableName() string {
	return "conversations"
}

// ConversationSummary 会话列表项（只投影索引字段，不含消息内容）
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updatedAt"`
}
