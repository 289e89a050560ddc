package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint, vis Visibility) ([]models.Comment, error)
	ListPending(ctx context.Context, limit int) ([]models.Comment, error)
	CountApprovedByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error)
	UpdateContent(ctx context.Context, id uint, content string, editedAt time.Time) error
	Approve(ctx context.Context, id uint) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return dbErr(r.db.WithContext(ctx).Create(comment).Error)
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, dbErr(err)
	}
	return &comment, nil
}

// ListByPost returns the comments of a post visible under vis, oldest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID uint, vis Visibility) ([]models.Comment, error) {
	var comments []models.Comment
	q := r.db.WithContext(ctx).Where("post_id = ?", postID)
	err := vis.apply(q).Order("created_at ASC, id ASC").Find(&comments).Error
	if err != nil {
		return nil, dbErr(err)
	}
	return comments, nil
}

// ListPending returns the moderation queue, newest first.
func (r *commentRepository) ListPending(ctx context.Context, limit int) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("is_approved = ?", false).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, dbErr(err)
	}
	return comments, nil
}

func (r *commentRepository) CountApprovedByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Select("post_id AS id, COUNT(*) AS count").
		Where("post_id IN ? AND is_approved = ?", postIDs, true).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbErr(err)
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id uint, content string, editedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":   content,
			"is_edited": true,
			"edited_at": editedAt,
		})
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("评论不存在")
	}
	return nil
}

// Approve moves a pending comment to approved. It reports false when the comment
// was already approved.
func (r *commentRepository) Approve(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
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

// Delete removes the comment together with its replies, likes and reports.
func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("comment_id = ?", id).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.Reply{}).Error; err != nil {
			return err
		}
		if err := tx.Where("comment_id = ?", id).Delete(&models.Report{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Comment{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("评论不存在")
		}
		return nil
	})
	return dbErr(err)
}
