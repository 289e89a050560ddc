package models

import (
	"time"
)

// CommentLike 评论点赞 - 每个用户对每条评论最多一条
type CommentLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CommentID uint      `gorm:"not null;uniqueIndex:idx_comment_user" json:"comment_id"`
	Comment   *Comment  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_comment_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
