package repository

import (
	"context"

	"gorm.io/gorm"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

type ReplyRepository interface {
	Create(ctx context.Context, reply *models.Reply) error
	GetByID(ctx context.Context, id uint) (*models.Reply, error)
	ListByComments(ctx context.Context, commentIDs []uint, vis Visibility) ([]models.Reply, error)
	ListPending(ctx context.Context, limit int) ([]models.Reply, error)
	Approve(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type replyRepository struct {
	db *gorm.DB
}

func NewReplyRepository(db *gorm.DB) ReplyRepository {
	return &replyRepository{db: db}
}

func (r *replyRepository) Create(ctx context.Context, reply *models.Reply) error {
	return dbErr(r.db.WithContext(ctx).Create(reply).Error)
}

func (r *replyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	var reply models.Reply
	if err := r.db.WithContext(ctx).First(&reply, id).Error; err != nil {
		return nil, dbErr(err)
	}
	return &reply, nil
}

func (r *replyRepository) ListByComments(ctx context.Context, commentIDs []uint, vis Visibility) ([]models.Reply, error) {
	if len(commentIDs) == 0 {
		return nil, nil
	}
	var replies []models.Reply
	q := r.db.WithContext(ctx).Where("comment_id IN ?", commentIDs)
	if err := vis.apply(q).Order("created_at ASC, id ASC").Find(&replies).Error; err != nil {
		return nil, dbErr(err)
	}
	return replies, nil
}

func (r *replyRepository) ListPending(ctx context.Context, limit int) ([]models.Reply, error) {
	var replies []models.Reply
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&replies).Error
	if err != nil {
		return nil, dbErr(err)
	}
	return replies, nil
}

func (r *replyRepository) Approve(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Reply{}).
		Where("id = ? AND is_approved = ?", id, false).
		Update("is_approved", true)
	if res.Error != nil {
		return false, dbErr(res.Error)
	}
	if res.RowsAffected > 0 {
		return true, nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *replyRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Reply{}, id)
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("回复不存在")
	}
	return nil
}
