package services

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// Notice is the payload shared by every recipient of one fan-out.
type Notice struct {
	Type        models.NotificationType
	Title       string
	Content     string
	RelatedType string
	RelatedID   *uint
}

// BroadcastTarget is either a single user or everybody.
type BroadcastTarget struct {
	UserID uint
	All    bool
}

// Notifier is what the write paths (replies, approvals, post updates) call after their
// own write succeeded.
type Notifier interface {
	Notify(ctx context.Context, recipients []uint, n Notice) error
}

type NotificationService struct {
	repo  repository.NotificationRepository
	users repository.UserRepository
}

func NewNotificationService(repo repository.NotificationRepository, users repository.UserRepository) *NotificationService {
	return &NotificationService{repo: repo, users: users}
}

// Notify writes one row per distinct recipient in a single transaction: either every
// recipient is notified or none is.
func (s *NotificationService) Notify(ctx context.Context, recipients []uint, n Notice) error {
	if !n.Type.Valid() {
		return apperr.Validation("未知的通知类型")
	}
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return apperr.Validation("通知标题不能为空")
	}

	seen := make(map[uint]struct{}, len(recipients))
	batch := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		batch = append(batch, models.Notification{
			UserID:      id,
			Type:        n.Type,
			Title:       n.Title,
			Content:     n.Content,
			RelatedType: n.RelatedType,
			RelatedID:   n.RelatedID,
		})
	}
	if len(batch) == 0 {
		return nil
	}

	if err := s.repo.CreateBatch(ctx, batch); err != nil {
		return err
	}
	log.Debugf("[notification] %s fan-out to %d users", n.Type, len(batch))
	return nil
}

// Broadcast sends an admin notice to one user or to every user and returns the number
// of recipients.
func (s *NotificationService) Broadcast(ctx context.Context, sess auth.Session, target BroadcastTarget, n Notice) (int, error) {
	if !sess.IsAdmin() {
		return 0, apperr.PermissionDenied("需要管理员权限")
	}
	if n.Type == "" {
		n.Type = models.NotificationTypeSystem
	}

	var recipients []uint
	switch {
	case target.All:
		ids, err := s.users.ListIDs(ctx)
		if err != nil {
			return 0, err
		}
		recipients = ids
	case target.UserID != 0:
		if _, err := s.users.GetByID(ctx, target.UserID); err != nil {
			return 0, err
		}
		recipients = []uint{target.UserID}
	default:
		return 0, apperr.Validation("请选择接收用户")
	}

	if err := s.Notify(ctx, recipients, n); err != nil {
		return 0, err
	}
	log.Infof("[notification] admin %d broadcast %q to %d users", sess.UserID, n.Title, len(recipients))
	return len(recipients), nil
}

func (s *NotificationService) List(ctx context.Context, sess auth.Session, unreadOnly bool, page repository.Page) ([]models.Notification, int64, error) {
	if !sess.IsAuthenticated() {
		return nil, 0, apperr.Unauthenticated("请先登录")
	}
	return s.repo.ListByUser(ctx, sess.UserID, unreadOnly, page)
}

// MarkRead is idempotent: marking an already read notification succeeds.
func (s *NotificationService) MarkRead(ctx context.Context, sess auth.Session, id uint) error {
	if !sess.IsAuthenticated() {
		return apperr.Unauthenticated("请先登录")
	}
	return s.repo.MarkRead(ctx, id, sess.UserID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, sess auth.Session) (int64, error) {
	if !sess.IsAuthenticated() {
		return 0, apperr.Unauthenticated("请先登录")
	}
	return s.repo.MarkAllRead(ctx, sess.UserID)
}

// UnreadCount is always a fresh COUNT, never a cached counter.
func (s *NotificationService) UnreadCount(ctx context.Context, sess auth.Session) (int64, error) {
	if !sess.IsAuthenticated() {
		return 0, nil
	}
	return s.repo.UnreadCount(ctx, sess.UserID)
}

func (s *NotificationService) Delete(ctx context.Context, sess auth.Session, id uint) error {
	if !sess.IsAuthenticated() {
		return apperr.Unauthenticated("请先登录")
	}
	return s.repo.Delete(ctx, id, sess.UserID)
}
