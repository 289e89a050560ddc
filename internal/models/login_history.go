package models

import (
	"time"
)

// LoginHistory 登录记录，每次成功登录写入一条
type LoginHistory struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	User       *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user,omitempty"`
	IP         string    `gorm:"size:64" json:"ip"`
	DeviceType string    `gorm:"size:20" json:"device_type"` // desktop, mobile, tablet, bot
	OS         string    `gorm:"size:50" json:"os"`
	Browser    string    `gorm:"size:50" json:"browser"`
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}
