package models

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// 用户状态
const (
	UserStatusNormal = 0
	UserStatusMuted  = 1 // 禁言
	UserStatusBanned = 2 // 封禁
)

type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email         string     `gorm:"uniqueIndex;not null" json:"email"`
	Password      string     `gorm:"not null" json:"-"`                           // bcrypt hash
	Role          string     `gorm:"size:20;default:'user';not null" json:"role"` // user, admin
	Status        int        `gorm:"default:0" json:"status"`                     // 0:正常, 1:禁言, 2:封禁
	PunishExpires *time.Time `json:"punish_expires"`                              // 惩罚到期时间
	Avatar        string     `json:"avatar"`                                      // 头像 URL (对象存储)
	Bio           string     `gorm:"size:200" json:"bio"`
	Website       string     `gorm:"size:200" json:"website"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
