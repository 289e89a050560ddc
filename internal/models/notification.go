package models

import (
	"time"
)

type NotificationType string

const (
	NotificationTypeReplyComment  NotificationType = "reply_comment"
	NotificationTypeArticleUpdate NotificationType = "article_update"
	NotificationTypeSystem        NotificationType = "system"
	NotificationTypeMention       NotificationType = "mention"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationTypeReplyComment, NotificationTypeArticleUpdate, NotificationTypeSystem, NotificationTypeMention:
		return true
	}
	return false
}

// 关联实体类型，用于前端跳转
const (
	RelatedTypePost    = "post"
	RelatedTypeComment = "comment"
	RelatedTypeReply   = "reply"
)

type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	UserID      uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User        *User            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Type        NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Title       string           `gorm:"size:200;not null" json:"title"`
	Content     string           `gorm:"type:text" json:"content"`
	RelatedType string           `gorm:"size:20" json:"related_type,omitempty"`
	RelatedID   *uint            `json:"related_id,omitempty"`
	IsRead      bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index" json:"created_at"`
}
