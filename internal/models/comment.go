package models

import (
	"time"
)

// Comment is a top-level comment on a post. Readers only see it once IsApproved is set;
// its author and admins always see it.
type Comment struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	PostID     uint       `gorm:"not null;index" json:"post_id"`
	Post       *Post      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	UserID     *uint      `gorm:"index" json:"user_id"` // nil for legacy / anonymous rows
	AuthorName string     `gorm:"size:50;not null" json:"author_name"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	IsApproved bool       `gorm:"default:false;index" json:"is_approved"`
	IsEdited   bool       `gorm:"default:false" json:"is_edited"`
	EditedAt   *time.Time `json:"edited_at"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`

	Replies   []Reply `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"replies,omitempty"`
	LikeCount int64   `gorm:"-" json:"like_count"`
	LikedByMe bool    `gorm:"-" json:"liked_by_me"`
}

// OwnedBy reports whether userID authored the comment.
func (c *Comment) OwnedBy(userID uint) bool {
	return c.UserID != nil && userID != 0 && *c.UserID == userID
}

// Reply hangs off exactly one Comment; replies are never nested further.
type Reply struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CommentID  uint      `gorm:"not null;index" json:"comment_id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	AuthorName string    `gorm:"size:50;not null" json:"author_name"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsApproved bool      `gorm:"default:false;index" json:"is_approved"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Reply) OwnedBy(userID uint) bool {
	return r.UserID != nil && userID != 0 && *r.UserID == userID
}
