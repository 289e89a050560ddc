package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

type AnnouncementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	GetByID(ctx context.Context, id uint) (*models.Announcement, error)
	Update(ctx context.Context, a *models.Announcement) error
	Delete(ctx context.Context, id uint) error
	ListUnexpired(ctx context.Context, now time.Time) ([]models.Announcement, error)
	ListAll(ctx context.Context) ([]models.Announcement, error)
}

type announcementRepository struct {
	db *gorm.DB
}

func NewAnnouncementRepository(db *gorm.DB) AnnouncementRepository {
	return &announcementRepository{db: db}
}

func (r *announcementRepository) Create(ctx context.Context, a *models.Announcement) error {
	return dbErr(r.db.WithContext(ctx).Create(a).Error)
}

func (r *announcementRepository) GetByID(ctx context.Context, id uint) (*models.Announcement, error) {
	var a models.Announcement
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, dbErr(err)
	}
	return &a, nil
}

func (r *announcementRepository) Update(ctx context.Context, a *models.Announcement) error {
	res := r.db.WithContext(ctx).Model(a).
		Select("Title", "Content", "Level", "Active", "StartsAt", "EndsAt").
		Updates(a)
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("公告不存在")
	}
	return nil
}

func (r *announcementRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Announcement{}, id)
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("公告不存在")
	}
	return nil
}

// ListUnexpired returns active announcements that have not ended by now, newest first.
// Scheduled ones whose window has not opened yet are included.
func (r *announcementRepository) ListUnexpired(ctx context.Context, now time.Time) ([]models.Announcement, error) {
	var list []models.Announcement
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("ends_at IS NULL OR ends_at > ?", now).
		Order("created_at DESC").
		Find(&list).Error
	if err != nil {
		return nil, dbErr(err)
	}
	return list, nil
}

func (r *announcementRepository) ListAll(ctx context.Context) ([]models.Announcement, error) {
	var list []models.Announcement
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, dbErr(err)
	}
	return list, nil
}
