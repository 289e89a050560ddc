package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

type ReportFilter struct {
	Status models.ReportStatus // empty means any
	Page   Page
}

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error)
	Resolve(ctx context.Context, id uint, outcome models.ReportStatus, resolverID uint, at time.Time) error
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	return dbErr(r.db.WithContext(ctx).Create(report).Error)
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	if err := r.db.WithContext(ctx).First(&report, id).Error; err != nil {
		return nil, dbErr(err)
	}
	return &report, nil
}

// List returns the triage queue newest first.
func (r *reportRepository) List(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbErr(err)
	}

	var reports []models.Report
	err := filter.Page.apply(q.Preload("Comment").Order("created_at DESC, id DESC")).Find(&reports).Error
	if err != nil {
		return nil, 0, dbErr(err)
	}
	return reports, total, nil
}

// Resolve closes a pending report. The status guard lives in the UPDATE itself so
// two admins racing on the same report cannot both win.
func (r *reportRepository) Resolve(ctx context.Context, id uint, outcome models.ReportStatus, resolverID uint, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Report{}).
		Where("id = ? AND status = ?", id, models.ReportStatusPending).
		Updates(map[string]interface{}{
			"status":      outcome,
			"resolved_by": resolverID,
			"resolved_at": at,
		})
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return apperr.InvalidTransition("该举报已处理")
}
