package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inkwell/internal/models"
)

type BookmarkRepository interface {
	Toggle(ctx context.Context, userID, postID uint) error
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	CountByPost(ctx context.Context, postID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint, page Page) ([]models.Bookmark, int64, error)
	UserIDsByPost(ctx context.Context, postID uint) ([]uint, error)
}

type bookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

// Toggle 收藏/取消收藏，与点赞相同的删除优先策略
func (r *bookmarkRepository) Toggle(ctx context.Context, userID, postID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Bookmark{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		bookmark := models.Bookmark{UserID: userID, PostID: postID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Omit("Post", "User").Create(&bookmark).Error
	})
	return dbErr(err)
}

func (r *bookmarkRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	if err != nil {
		return false, dbErr(err)
	}
	return count > 0, nil
}

func (r *bookmarkRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Bookmark{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
		return 0, dbErr(err)
	}
	return count, nil
}

func (r *bookmarkRepository) ListByUser(ctx context.Context, userID uint, page Page) ([]models.Bookmark, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Bookmark{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbErr(err)
	}

	var bookmarks []models.Bookmark
	err := page.apply(q.Preload("Post").Preload("Post.User").Order("created_at DESC")).Find(&bookmarks).Error
	if err != nil {
		return nil, 0, dbErr(err)
	}
	return bookmarks, total, nil
}

func (r *bookmarkRepository) UserIDsByPost(ctx context.Context, postID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Bookmark{}).
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, dbErr(err)
	}
	return ids, nil
}
