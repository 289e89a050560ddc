package repository

import (
	"context"

	"gorm.io/gorm"

	"inkwell/internal/models"
)

type LoginHistoryRepository interface {
	Create(ctx context.Context, entry *models.LoginHistory) error
	ListByUser(ctx context.Context, userID uint, page Page) ([]models.LoginHistory, int64, error)
	List(ctx context.Context, page Page) ([]models.LoginHistory, int64, error)
}

type loginHistoryRepository struct {
	db *gorm.DB
}

func NewLoginHistoryRepository(db *gorm.DB) LoginHistoryRepository {
	return &loginHistoryRepository{db: db}
}

func (r *loginHistoryRepository) Create(ctx context.Context, entry *models.LoginHistory) error {
	return dbErr(r.db.WithContext(ctx).Create(entry).Error)
}

func (r *loginHistoryRepository) ListByUser(ctx context.Context, userID uint, page Page) ([]models.LoginHistory, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&models.LoginHistory{}).Where("user_id = ?", userID), page)
}

func (r *loginHistoryRepository) List(ctx context.Context, page Page) ([]models.LoginHistory, int64, error) {
	return r.list(r.db.WithContext(ctx).Model(&models.LoginHistory{}).Preload("User"), page)
}

func (r *loginHistoryRepository) list(q *gorm.DB, page Page) ([]models.LoginHistory, int64, error) {
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbErr(err)
	}
	var entries []models.LoginHistory
	if err := page.apply(q.Order("created_at DESC")).Find(&entries).Error; err != nil {
		return nil, 0, dbErr(err)
	}
	return entries, total, nil
}
