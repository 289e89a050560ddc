package services

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/utils"
)

const activeAnnouncementsKey = "active"

type AnnouncementInput struct {
	Title    string     `json:"title"`
	Content  string     `json:"content"`
	Level    string     `json:"level"`
	Active   bool       `json:"active"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (in *AnnouncementInput) normalise() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validation("公告标题不能为空")
	}
	switch in.Level {
	case "":
		in.Level = "info"
	case "info", "warning", "success":
	default:
		return apperr.Validation("公告级别只能是 info、warning 或 success")
	}
	if in.StartsAt != nil && in.EndsAt != nil && !in.EndsAt.After(*in.StartsAt) {
		return apperr.Validation("结束时间必须晚于开始时间")
	}
	return nil
}

type AnnouncementService struct {
	repo  repository.AnnouncementRepository
	cache *utils.TTLCache[string, []models.Announcement]
	now   func() time.Time
}

// NewAnnouncementService caches the public list for ttl; admin writes purge it.
func NewAnnouncementService(repo repository.AnnouncementRepository, ttl time.Duration) (*AnnouncementService, error) {
	cache, err := utils.NewTTLCache[string, []models.Announcement](1, ttl)
	if err != nil {
		return nil, err
	}
	return &AnnouncementService{repo: repo, cache: cache, now: time.Now}, nil
}

// ListActive returns announcements visible right now.
func (s *AnnouncementService) ListActive(ctx context.Context) ([]models.Announcement, error) {
	list, err := s.cache.GetOrLoad(activeAnnouncementsKey, func() ([]models.Announcement, error) {
		return s.repo.ListUnexpired(ctx, s.now())
	})
	if err != nil {
		return nil, err
	}
	// 缓存里包含尚未开始的公告，开始/结束时间都按当前时间判断
	now := s.now()
	visible := make([]models.Announcement, 0, len(list))
	for i := range list {
		if list[i].VisibleAt(now) {
			visible = append(visible, list[i])
		}
	}
	return visible, nil
}

func (s *AnnouncementService) ListAll(ctx context.Context, sess auth.Session) ([]models.Announcement, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	return s.repo.ListAll(ctx)
}

func (s *AnnouncementService) Create(ctx context.Context, sess auth.Session, in AnnouncementInput) (*models.Announcement, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	if err := in.normalise(); err != nil {
		return nil, err
	}
	a := &models.Announcement{
		Title:     in.Title,
		Content:   in.Content,
		Level:     in.Level,
		Active:    in.Active,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		CreatedBy: sess.UserID,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.cache.Purge()
	log.Infof("[announcement] %d created by %d", a.ID, sess.UserID)
	return a, nil
}

func (s *AnnouncementService) Update(ctx context.Context, sess auth.Session, id uint, in AnnouncementInput) (*models.Announcement, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	if err := in.normalise(); err != nil {
		return nil, err
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Title = in.Title
	a.Content = in.Content
	a.Level = in.Level
	a.Active = in.Active
	a.StartsAt = in.StartsAt
	a.EndsAt = in.EndsAt
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	s.cache.Purge()
	return a, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, sess auth.Session, id uint) error {
	if !sess.IsAdmin() {
		return apperr.PermissionDenied("需要管理员权限")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Purge()
	return nil
}
