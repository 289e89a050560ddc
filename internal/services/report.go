package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

const MaxReportDescriptionRunes = 500

type ReportService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	reports  repository.ReportRepository
	now      func() time.Time
}

func NewReportService(comments repository.CommentRepository, posts repository.PostRepository, reports repository.ReportRepository) *ReportService {
	return &ReportService{comments: comments, posts: posts, reports: reports, now: time.Now}
}

// FileReport 举报评论。自己举报自己的评论不做拦截
func (s *ReportService) FileReport(ctx context.Context, sess auth.Session, commentID uint, reason models.ReportReason, description string) (*models.Report, error) {
	if !sess.IsAuthenticated() {
		return nil, apperr.Unauthenticated("请先登录")
	}
	if reason == "" {
		return nil, apperr.Validation("请选择举报原因")
	}
	if !reason.Valid() {
		return nil, apperr.Validation("未知的举报原因")
	}
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > MaxReportDescriptionRunes {
		return nil, apperr.Validation("补充说明不能超过 500 字")
	}

	comment, err := readableComment(ctx, s.comments, s.posts, sess, commentID)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		CommentID:   comment.ID,
		ReporterID:  sess.UserID,
		Reason:      reason,
		Description: description,
		Status:      models.ReportStatusPending,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	log.Infof("[report] user %d reported comment %d (%s)", sess.UserID, commentID, reason)
	return report, nil
}

// ResolveReport closes a pending report. A report that is already resolved or dismissed
// is rejected with invalid_transition; its resolver and timestamp stay untouched.
func (s *ReportService) ResolveReport(ctx context.Context, sess auth.Session, reportID uint, outcome models.ReportStatus) error {
	if !sess.IsAdmin() {
		return apperr.PermissionDenied("需要管理员权限")
	}
	if !outcome.IsTerminal() {
		return apperr.Validation("处理结果只能是 resolved 或 dismissed")
	}
	if err := s.reports.Resolve(ctx, reportID, outcome, sess.UserID, s.now()); err != nil {
		return err
	}
	log.Infof("[report] report %d %s by admin %d", reportID, outcome, sess.UserID)
	return nil
}

// ListReports is the admin triage queue, newest first.
func (s *ReportService) ListReports(ctx context.Context, sess auth.Session, status models.ReportStatus, page repository.Page) ([]models.Report, int64, error) {
	if !sess.IsAdmin() {
		return nil, 0, apperr.PermissionDenied("需要管理员权限")
	}
	switch status {
	case "", models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return nil, 0, apperr.Validation("未知的举报状态")
	}
	return s.reports.List(ctx, repository.ReportFilter{Status: status, Page: page})
}
