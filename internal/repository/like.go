package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/models"
)

type LikeRepository interface {
	Toggle(ctx context.Context, commentID, userID uint) error
	Exists(ctx context.Context, commentID, userID uint) (bool, error)
	CountByComment(ctx context.Context, commentID uint) (int64, error)
	CountByComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error)
	LikedByUser(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle deletes the (comment, user) row if present, otherwise inserts it.
// The insert is ON CONFLICT DO NOTHING against idx_comment_user, so two racing
// toggles can never leave two rows behind.
func (r *likeRepository) Toggle(ctx context.Context, commentID, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("comment_id = ? AND user_id = ?", commentID, userID).Delete(&models.CommentLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		like := models.CommentLike{CommentID: commentID, UserID: userID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like).Error
	})
	return dbErr(err)
}

func (r *likeRepository) Exists(ctx context.Context, commentID, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("comment_id = ? AND user_id = ?", commentID, userID).
		Count(&count).Error
	if err != nil {
		return false, dbErr(err)
	}
	return count > 0, nil
}

func (r *likeRepository) CountByComment(ctx context.Context, commentID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error
	if err != nil {
		return 0, dbErr(err)
	}
	return count, nil
}

func (r *likeRepository) CountByComments(ctx context.Context, commentIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(commentIDs))
	if len(commentIDs) == 0 {
		return counts, nil
	}

	var rows []countRow
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Select("comment_id AS id, COUNT(*) AS count").
		Where("comment_id IN ?", commentIDs).
		Group("comment_id").
		Scan(&rows).Error
	if err != nil {
		return nil, dbErr(err)
	}
	for _, row := range rows {
		counts[row.ID] = row.Count
	}
	return counts, nil
}

func (r *likeRepository) LikedByUser(ctx context.Context, userID uint, commentIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool)
	if userID == 0 || len(commentIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id IN ?", userID, commentIDs).
		Pluck("comment_id", &ids).Error
	if err != nil {
		return nil, dbErr(err)
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
