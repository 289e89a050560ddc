package services

import (
	"context"
	"strings"

	"github.com/mssola/useragent"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
)

// DeviceInfo 从 User-Agent 解析出的设备信息
type DeviceInfo struct {
	DeviceType string `json:"device_type"`
	OS         string `json:"os"`
	Browser    string `json:"browser"`
}

func ParseUserAgent(raw string) DeviceInfo {
	if strings.TrimSpace(raw) == "" {
		return DeviceInfo{DeviceType: DeviceDesktop, OS: "Unknown", Browser: "Unknown"}
	}
	ua := useragent.New(raw)

	info := DeviceInfo{DeviceType: DeviceDesktop, OS: ua.OS(), Browser: "Unknown"}
	name, version := ua.Browser()
	if name != "" {
		info.Browser = name
		if major, _, _ := strings.Cut(version, "."); major != "" {
			info.Browser += " " + major
		}
	}
	if info.OS == "" {
		info.OS = "Unknown"
	}

	switch {
	case ua.Bot():
		info.DeviceType = DeviceBot
	case strings.Contains(raw, "iPad") || strings.Contains(raw, "Tablet"):
		info.DeviceType = DeviceTablet
	case ua.Mobile():
		info.DeviceType = DeviceMobile
	}
	return info
}

type LoginHistoryService struct {
	repo repository.LoginHistoryRepository
}

func NewLoginHistoryService(repo repository.LoginHistoryRepository) *LoginHistoryService {
	return &LoginHistoryService{repo: repo}
}

// RecordLogin writes one login event for userID.
func (s *LoginHistoryService) RecordLogin(ctx context.Context, userID uint, ip, userAgent string) (*models.LoginHistory, error) {
	info := ParseUserAgent(userAgent)
	entry := &models.LoginHistory{
		UserID:     userID,
		IP:         ip,
		DeviceType: info.DeviceType,
		OS:         info.OS,
		Browser:    info.Browser,
		UserAgent:  userAgent,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *LoginHistoryService) ListMine(ctx context.Context, sess auth.Session, page repository.Page) ([]models.LoginHistory, int64, error) {
	if !sess.IsAuthenticated() {
		return nil, 0, apperr.Unauthenticated("请先登录")
	}
	return s.repo.ListByUser(ctx, sess.UserID, page)
}

// ListAll 管理员查看所有登录记录，可按用户筛选
func (s *LoginHistoryService) ListAll(ctx context.Context, sess auth.Session, userID uint, page repository.Page) ([]models.LoginHistory, int64, error) {
	if !sess.IsAdmin() {
		return nil, 0, apperr.PermissionDenied("需要管理员权限")
	}
	if userID != 0 {
		return s.repo.ListByUser(ctx, userID, page)
	}
	return s.repo.List(ctx, page)
}
