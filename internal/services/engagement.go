package services

import (
	"context"
	"time"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/repository"
)

// LikeState is always read back from the store after the toggle.
type LikeState struct {
	Liked bool  `json:"liked"`
	Count int64 `json:"count"`
}

type EngagementService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	likes    repository.LikeRepository
	now      func() time.Time
}

func NewEngagementService(comments repository.CommentRepository, posts repository.PostRepository, likes repository.LikeRepository) *EngagementService {
	return &EngagementService{comments: comments, posts: posts, likes: likes, now: time.Now}
}

// ToggleLike 点赞/取消点赞。返回值来自写入后的重新查询，而不是调用方的意图
func (s *EngagementService) ToggleLike(ctx context.Context, sess auth.Session, commentID uint) (LikeState, error) {
	if !sess.IsAuthenticated() {
		return LikeState{}, apperr.Unauthenticated("请先登录")
	}
	if sess.IsBanned(s.now()) {
		return LikeState{}, apperr.PermissionDenied("账号已被封禁")
	}

	if _, err := readableComment(ctx, s.comments, s.posts, sess, commentID); err != nil {
		return LikeState{}, err
	}

	if err := s.likes.Toggle(ctx, commentID, sess.UserID); err != nil {
		return LikeState{}, err
	}
	return s.read(ctx, sess, commentID)
}

// State reads the current like state of a comment for sess. Comments sess cannot
// see are not_found.
func (s *EngagementService) State(ctx context.Context, sess auth.Session, commentID uint) (LikeState, error) {
	if _, err := readableComment(ctx, s.comments, s.posts, sess, commentID); err != nil {
		return LikeState{}, err
	}
	return s.read(ctx, sess, commentID)
}

func (s *EngagementService) read(ctx context.Context, sess auth.Session, commentID uint) (LikeState, error) {
	liked := false
	if sess.IsAuthenticated() {
		var err error
		if liked, err = s.likes.Exists(ctx, commentID, sess.UserID); err != nil {
			return LikeState{}, err
		}
	}
	count, err := s.likes.CountByComment(ctx, commentID)
	if err != nil {
		return LikeState{}, err
	}
	return LikeState{Liked: liked, Count: count}, nil
}
