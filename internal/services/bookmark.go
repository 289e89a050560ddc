package services

import (
	"context"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

type BookmarkState struct {
	Bookmarked bool  `json:"bookmarked"`
	Count      int64 `json:"count"`
}

type BookmarkService struct {
	posts     repository.PostRepository
	bookmarks repository.BookmarkRepository
}

func NewBookmarkService(posts repository.PostRepository, bookmarks repository.BookmarkRepository) *BookmarkService {
	return &BookmarkService{posts: posts, bookmarks: bookmarks}
}

// Toggle 收藏/取消收藏，返回写入后重新查询的状态
func (s *BookmarkService) Toggle(ctx context.Context, sess auth.Session, postID uint) (BookmarkState, error) {
	if !sess.IsAuthenticated() {
		return BookmarkState{}, apperr.Unauthenticated("请先登录")
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return BookmarkState{}, err
	}
	if !post.Published && !sess.IsAdmin() {
		return BookmarkState{}, apperr.NotFound("文章不存在")
	}

	if err := s.bookmarks.Toggle(ctx, sess.UserID, postID); err != nil {
		return BookmarkState{}, err
	}
	bookmarked, err := s.bookmarks.Exists(ctx, sess.UserID, postID)
	if err != nil {
		return BookmarkState{}, err
	}
	count, err := s.bookmarks.CountByPost(ctx, postID)
	if err != nil {
		return BookmarkState{}, err
	}
	return BookmarkState{Bookmarked: bookmarked, Count: count}, nil
}

func (s *BookmarkService) List(ctx context.Context, sess auth.Session, page repository.Page) ([]models.Bookmark, int64, error) {
	if !sess.IsAuthenticated() {
		return nil, 0, apperr.Unauthenticated("请先登录")
	}
	return s.bookmarks.ListByUser(ctx, sess.UserID, page)
}
