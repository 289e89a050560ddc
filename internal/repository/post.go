package repository

import (
	"context"

	"gorm.io/gorm"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, publishedOnly bool, page Page) ([]models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return dbErr(r.db.WithContext(ctx).Omit("User").Create(post).Error)
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").First(&post, id).Error; err != nil {
		return nil, dbErr(err)
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("User").Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, dbErr(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, publishedOnly bool, page Page) ([]models.Post, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if publishedOnly {
		q = q.Where("published = ?", true)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, dbErr(err)
	}

	var posts []models.Post
	if err := page.apply(q.Preload("User").Order("created_at DESC")).Find(&posts).Error; err != nil {
		return nil, 0, dbErr(err)
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).Select("Slug", "Title", "Summary", "Content", "CoverURL", "Published").Updates(post)
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("文章不存在")
	}
	return nil
}

// Delete hard deletes the post; comments go with it through the FK cascade.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return dbErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("文章不存在")
	}
	return nil
}

func (r *postRepository) IncrementViews(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
	return dbErr(err)
}
