package services

import (
	"context"
	"html/template"
	"regexp"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

var slugInvalid = regexp.MustCompile(`[^\p{L}\p{N}]+`)

type PostInput struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Content   string `json:"content"`
	CoverURL  string `json:"cover_url"`
	Published bool   `json:"published"`
}

// PostDetail is a post plus its rendered body.
type PostDetail struct {
	*models.Post
	HTML template.HTML `json:"html"`
}

// MarkdownRenderer is satisfied by utils.Renderer.
type MarkdownRenderer interface {
	Render(source string) template.HTML
}

type PostService struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	bookmarks repository.BookmarkRepository
	notifier  Notifier
	renderer  MarkdownRenderer
}

func NewPostService(posts repository.PostRepository, comments repository.CommentRepository, bookmarks repository.BookmarkRepository, notifier Notifier, renderer MarkdownRenderer) *PostService {
	return &PostService{posts: posts, comments: comments, bookmarks: bookmarks, notifier: notifier, renderer: renderer}
}

// Slugify lowercases s and joins its letter/digit runs with dashes.
func Slugify(s string) string {
	slug := strings.Trim(slugInvalid.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if r := []rune(slug); len(r) > 100 {
		slug = strings.TrimRight(string(r[:100]), "-")
	}
	return slug
}

func (in *PostInput) normalise() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return apperr.Validation("标题不能为空")
	}
	in.Summary = strings.TrimSpace(in.Summary)
	if len([]rune(in.Summary)) > 500 {
		return apperr.Validation("摘要不能超过 500 字")
	}
	in.Slug = Slugify(in.Slug)
	if in.Slug == "" {
		in.Slug = Slugify(in.Title)
	}
	if in.Slug == "" {
		in.Slug = uuid.NewString()[:8]
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, sess auth.Session, in PostInput) (*models.Post, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	if err := in.normalise(); err != nil {
		return nil, err
	}
	post := &models.Post{
		Slug:      in.Slug,
		UserID:    sess.UserID,
		Title:     in.Title,
		Summary:   in.Summary,
		Content:   in.Content,
		CoverURL:  in.CoverURL,
		Published: in.Published,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict("链接别名已存在")
		}
		return nil, err
	}
	log.Infof("[post] post %d (%s) created by %d", post.ID, post.Slug, sess.UserID)
	return post, nil
}

// Update 更新文章；已发布的文章会通知收藏了它的用户
func (s *PostService) Update(ctx context.Context, sess auth.Session, id uint, in PostInput) (*models.Post, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	if err := in.normalise(); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.Slug = in.Slug
	post.Title = in.Title
	post.Summary = in.Summary
	post.Content = in.Content
	post.CoverURL = in.CoverURL
	post.Published = in.Published
	if err := s.posts.Update(ctx, post); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict("链接别名已存在")
		}
		return nil, err
	}

	if post.Published {
		s.notifyBookmarkers(ctx, post)
	}
	return post, nil
}

func (s *PostService) notifyBookmarkers(ctx context.Context, post *models.Post) {
	ids, err := s.bookmarks.UserIDsByPost(ctx, post.ID)
	if err != nil {
		log.WithError(err).Warnf("[post] failed to load bookmarkers of post %d", post.ID)
		return
	}
	err = s.notifier.Notify(ctx, ids, Notice{
		Type:        models.NotificationTypeArticleUpdate,
		Title:       "你收藏的文章《" + post.Title + "》有更新",
		Content:     post.Summary,
		RelatedType: models.RelatedTypePost,
		RelatedID:   &post.ID,
	})
	if err != nil {
		log.WithError(err).Warnf("[post] article_update fan-out for post %d failed", post.ID)
	}
}

func (s *PostService) Delete(ctx context.Context, sess auth.Session, id uint) error {
	if !sess.IsAdmin() {
		return apperr.PermissionDenied("需要管理员权限")
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	log.Infof("[post] post %d deleted by %d", id, sess.UserID)
	return nil
}

// List returns published posts; admins may ask for drafts too.
func (s *PostService) List(ctx context.Context, sess auth.Session, includeDrafts bool, page repository.Page) ([]models.Post, int64, error) {
	posts, total, err := s.posts.List(ctx, !(includeDrafts && sess.IsAdmin()), page)
	if err != nil {
		return nil, 0, err
	}
	if len(posts) == 0 {
		return []models.Post{}, total, nil
	}

	ids := make([]uint, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}
	counts, err := s.comments.CountApprovedByPosts(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range posts {
		posts[i].CommentCount = int(counts[posts[i].ID])
	}
	return posts, total, nil
}

// GetBySlug returns the rendered post and counts the view.
func (s *PostService) GetBySlug(ctx context.Context, sess auth.Session, slug string) (*PostDetail, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !post.Published && !sess.IsAdmin() {
		return nil, apperr.NotFound("文章不存在")
	}

	if err := s.posts.IncrementViews(ctx, post.ID); err != nil {
		log.WithError(err).Warnf("[post] failed to count view of post %d", post.ID)
	} else {
		post.Views++
	}

	counts, err := s.comments.CountApprovedByPosts(ctx, []uint{post.ID})
	if err != nil {
		return nil, err
	}
	post.CommentCount = int(counts[post.ID])

	return &PostDetail{Post: post, HTML: s.renderer.Render(post.Content)}, nil
}
