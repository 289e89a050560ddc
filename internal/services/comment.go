package services

import (
	"context"
	"regexp"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// 通知摘要长度
const excerptRunes = 100

var mentionPattern = regexp.MustCompile(`@([\p{L}\p{N}_]{1,50})`)

// CommentStores groups the tables the comment lifecycle touches.
type CommentStores struct {
	Posts    repository.PostRepository
	Comments repository.CommentRepository
	Replies  repository.ReplyRepository
	Likes    repository.LikeRepository
	Users    repository.UserRepository
}

// PendingQueue is the admin moderation queue.
type PendingQueue struct {
	Comments []models.Comment `json:"comments"`
	Replies  []models.Reply   `json:"replies"`
}

type CommentService struct {
	stores   CommentStores
	gate     *ModerationGate
	notifier Notifier
	mailer   ReplyMailer
	siteURL  string
	now      func() time.Time
}

func NewCommentService(stores CommentStores, gate *ModerationGate, notifier Notifier, mailer ReplyMailer, siteURL string) *CommentService {
	return &CommentService{
		stores:   stores,
		gate:     gate,
		notifier: notifier,
		mailer:   mailer,
		siteURL:  strings.TrimRight(siteURL, "/"),
		now:      time.Now,
	}
}

func visibilityFor(sess auth.Session) repository.Visibility {
	return repository.Visibility{ViewerID: sess.UserID, All: sess.IsAdmin()}
}

func (s *CommentService) loadPost(ctx context.Context, sess auth.Session, postID uint) (*models.Post, error) {
	return readablePost(ctx, s.stores.Posts, sess, postID)
}

// readablePost returns the post if the session may read it. Drafts only exist for admins.
func readablePost(ctx context.Context, posts repository.PostRepository, sess auth.Session, postID uint) (*models.Post, error) {
	post, err := posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !post.Published && !sess.IsAdmin() {
		return nil, apperr.NotFound("文章不存在")
	}
	return post, nil
}

// readableComment 评论本身可见（已通过，或本人/管理员）且所属文章对 sess 可见
func readableComment(ctx context.Context, comments repository.CommentRepository, posts repository.PostRepository, sess auth.Session, id uint) (*models.Comment, error) {
	comment, err := comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !comment.IsApproved && !sess.CanModerate(comment.UserID) {
		return nil, apperr.NotFound("评论不存在")
	}
	if _, err := readablePost(ctx, posts, sess, comment.PostID); err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.NotFound("评论不存在")
		}
		return nil, err
	}
	return comment, nil
}

// CreateComment 发表评论，管理员直接通过，其他人进入审核队列
func (s *CommentService) CreateComment(ctx context.Context, sess auth.Session, postID uint, content string) (*models.Comment, error) {
	admission, err := s.gate.Admit(sess, content)
	if err != nil {
		return nil, err
	}
	post, err := s.loadPost(ctx, sess, postID)
	if err != nil {
		return nil, err
	}

	authorID := sess.UserID
	comment := &models.Comment{
		PostID:     post.ID,
		UserID:     &authorID,
		AuthorName: sess.Username,
		Content:    admission.Content,
		IsApproved: admission.IsApproved,
	}
	if err := s.stores.Comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if comment.IsApproved {
		s.notifyMentions(ctx, authorID, comment.Content, models.RelatedTypeComment, comment.ID, nil)
	}
	return comment, nil
}

// ListComments returns the thread of a post as seen by sess, with replies and like state.
func (s *CommentService) ListComments(ctx context.Context, sess auth.Session, postID uint) ([]models.Comment, error) {
	if _, err := s.loadPost(ctx, sess, postID); err != nil {
		return nil, err
	}

	vis := visibilityFor(sess)
	comments, err := s.stores.Comments.ListByPost(ctx, postID, vis)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return []models.Comment{}, nil
	}

	ids := make([]uint, len(comments))
	for i := range comments {
		ids[i] = comments[i].ID
	}

	replies, err := s.stores.Replies.ListByComments(ctx, ids, vis)
	if err != nil {
		return nil, err
	}
	byComment := make(map[uint][]models.Reply, len(comments))
	for _, r := range replies {
		byComment[r.CommentID] = append(byComment[r.CommentID], r)
	}

	counts, err := s.stores.Likes.CountByComments(ctx, ids)
	if err != nil {
		return nil, err
	}
	liked, err := s.stores.Likes.LikedByUser(ctx, sess.UserID, ids)
	if err != nil {
		return nil, err
	}

	for i := range comments {
		c := &comments[i]
		c.Replies = byComment[c.ID]
		c.LikeCount = counts[c.ID]
		c.LikedByMe = liked[c.ID]
	}
	return comments, nil
}

// EditComment rewrites the content in place. Approval state is left as it was.
func (s *CommentService) EditComment(ctx context.Context, sess auth.Session, id uint, content string) (*models.Comment, error) {
	if err := s.gate.CheckAuthor(sess); err != nil {
		return nil, err
	}
	comment, err := s.stores.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.CanModerate(comment.UserID) {
		return nil, apperr.PermissionDenied("只能编辑自己的评论")
	}
	cleaned, err := s.gate.Clean(content)
	if err != nil {
		return nil, err
	}

	editedAt := s.now()
	if err := s.stores.Comments.UpdateContent(ctx, id, cleaned, editedAt); err != nil {
		return nil, err
	}
	comment.Content = cleaned
	comment.IsEdited = true
	comment.EditedAt = &editedAt
	return comment, nil
}

// DeleteComment removes the comment with its replies, likes and reports.
func (s *CommentService) DeleteComment(ctx context.Context, sess auth.Session, id uint) error {
	if !sess.IsAuthenticated() {
		return apperr.Unauthenticated("请先登录")
	}
	comment, err := s.stores.Comments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sess.CanModerate(comment.UserID) {
		return apperr.PermissionDenied("只能删除自己的评论")
	}
	if err := s.stores.Comments.Delete(ctx, id); err != nil {
		return err
	}
	log.Infof("[comment] comment %d deleted by user %d", id, sess.UserID)
	return nil
}

// ApproveComment moves a pending comment to approved and notifies its author.
// Approving an approved comment is a no-op.
func (s *CommentService) ApproveComment(ctx context.Context, sess auth.Session, id uint) (*models.Comment, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	comment, err := s.stores.Comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := s.stores.Comments.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	comment.IsApproved = true
	if !changed {
		return comment, nil
	}

	notified := map[uint]struct{}{sess.UserID: {}}
	if comment.UserID != nil && *comment.UserID != sess.UserID {
		s.notify(ctx, []uint{*comment.UserID}, Notice{
			Type:        models.NotificationTypeSystem,
			Title:       "你的评论已通过审核",
			Content:     excerpt(comment.Content),
			RelatedType: models.RelatedTypeComment,
			RelatedID:   &comment.ID,
		})
		notified[*comment.UserID] = struct{}{}
	}
	s.notifyMentions(ctx, derefID(comment.UserID), comment.Content, models.RelatedTypeComment, comment.ID, notified)
	return comment, nil
}

// CreateReply 回复评论，只允许一层
func (s *CommentService) CreateReply(ctx context.Context, sess auth.Session, commentID uint, content string) (*models.Reply, error) {
	admission, err := s.gate.Admit(sess, content)
	if err != nil {
		return nil, err
	}
	parent, err := readableComment(ctx, s.stores.Comments, s.stores.Posts, sess, commentID)
	if err != nil {
		return nil, err
	}

	authorID := sess.UserID
	reply := &models.Reply{
		CommentID:  parent.ID,
		UserID:     &authorID,
		AuthorName: sess.Username,
		Content:    admission.Content,
		IsApproved: admission.IsApproved,
	}
	if err := s.stores.Replies.Create(ctx, reply); err != nil {
		return nil, err
	}

	if reply.IsApproved {
		s.replyFanOut(ctx, parent, reply, map[uint]struct{}{})
	}
	return reply, nil
}

// ApproveReply approves a pending reply, then tells its author and the parent comment's author.
func (s *CommentService) ApproveReply(ctx context.Context, sess auth.Session, id uint) (*models.Reply, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	reply, err := s.stores.Replies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	changed, err := s.stores.Replies.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	reply.IsApproved = true
	if !changed {
		return reply, nil
	}

	notified := map[uint]struct{}{sess.UserID: {}}
	if reply.UserID != nil && *reply.UserID != sess.UserID {
		s.notify(ctx, []uint{*reply.UserID}, Notice{
			Type:        models.NotificationTypeSystem,
			Title:       "你的回复已通过审核",
			Content:     excerpt(reply.Content),
			RelatedType: models.RelatedTypeReply,
			RelatedID:   &reply.ID,
		})
		notified[*reply.UserID] = struct{}{}
	}

	parent, err := s.stores.Comments.GetByID(ctx, reply.CommentID)
	if err != nil {
		log.WithError(err).Warnf("[comment] parent of reply %d not found for fan-out", reply.ID)
		return reply, nil
	}
	s.replyFanOut(ctx, parent, reply, notified)
	return reply, nil
}

func (s *CommentService) DeleteReply(ctx context.Context, sess auth.Session, id uint) error {
	if !sess.IsAuthenticated() {
		return apperr.Unauthenticated("请先登录")
	}
	reply, err := s.stores.Replies.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !sess.CanModerate(reply.UserID) {
		return apperr.PermissionDenied("只能删除自己的回复")
	}
	return s.stores.Replies.Delete(ctx, id)
}

// ListPending returns the moderation queue, newest first.
func (s *CommentService) ListPending(ctx context.Context, sess auth.Session, limit int) (*PendingQueue, error) {
	if !sess.IsAdmin() {
		return nil, apperr.PermissionDenied("需要管理员权限")
	}
	if limit < 1 || limit > repository.MaxPageSize {
		limit = repository.MaxPageSize
	}
	comments, err := s.stores.Comments.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	replies, err := s.stores.Replies.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &PendingQueue{Comments: comments, Replies: replies}, nil
}

// replyFanOut runs once a reply is visible: the parent author gets a reply_comment
// notification (mirrored by mail) and mentioned users get a mention.
func (s *CommentService) replyFanOut(ctx context.Context, parent *models.Comment, reply *models.Reply, notified map[uint]struct{}) {
	replierID := derefID(reply.UserID)
	notified[replierID] = struct{}{}

	if parent.UserID != nil {
		if _, done := notified[*parent.UserID]; !done {
			s.notify(ctx, []uint{*parent.UserID}, Notice{
				Type:        models.NotificationTypeReplyComment,
				Title:       reply.AuthorName + " 回复了你的评论",
				Content:     excerpt(reply.Content),
				RelatedType: models.RelatedTypeComment,
				RelatedID:   &parent.ID,
			})
			notified[*parent.UserID] = struct{}{}
			s.mailReply(ctx, parent, reply)
		}
	}
	s.notifyMentions(ctx, replierID, reply.Content, models.RelatedTypeReply, reply.ID, notified)
}

func (s *CommentService) mailReply(ctx context.Context, parent *models.Comment, reply *models.Reply) {
	if s.mailer == nil || parent.UserID == nil {
		return
	}
	recipient, err := s.stores.Users.GetByID(ctx, *parent.UserID)
	if err != nil {
		log.WithError(err).Warnf("[comment] reply mail skipped for comment %d", parent.ID)
		return
	}
	post, err := s.stores.Posts.GetByID(ctx, parent.PostID)
	if err != nil {
		log.WithError(err).Warnf("[comment] reply mail skipped for comment %d", parent.ID)
		return
	}
	s.mailer.SendReplyNotification(recipient.Email, ReplyMail{
		Replier:         reply.AuthorName,
		PostTitle:       post.Title,
		ReplyContent:    reply.Content,
		OriginalContent: parent.Content,
		PostLink:        s.siteURL + "/posts/" + post.Slug,
	})
}

// notifyMentions notifies every existing @username in content except the author and
// anybody already in skip.
func (s *CommentService) notifyMentions(ctx context.Context, authorID uint, content, relatedType string, relatedID uint, skip map[uint]struct{}) {
	names := ExtractMentions(content)
	if len(names) == 0 {
		return
	}
	users, err := s.stores.Users.FindByUsernames(ctx, names)
	if err != nil {
		log.WithError(err).Warn("[comment] failed to resolve mentions")
		return
	}

	var recipients []uint
	for _, u := range users {
		if u.ID == authorID {
			continue
		}
		if _, ok := skip[u.ID]; ok {
			continue
		}
		recipients = append(recipients, u.ID)
	}
	if len(recipients) == 0 {
		return
	}
	id := relatedID
	s.notify(ctx, recipients, Notice{
		Type:        models.NotificationTypeMention,
		Title:       "有人在评论中提到了你",
		Content:     excerpt(content),
		RelatedType: relatedType,
		RelatedID:   &id,
	})
}

// notify 通知失败不影响已完成的写操作，只记录日志
func (s *CommentService) notify(ctx context.Context, recipients []uint, n Notice) {
	if err := s.notifier.Notify(ctx, recipients, n); err != nil {
		log.WithError(err).Warnf("[comment] %s notification to %v failed", n.Type, recipients)
	}
}

// ExtractMentions returns the distinct @usernames in content, in order of appearance.
func ExtractMentions(content string) []string {
	matches := mentionPattern.FindAllStringSubmatch(content, -1)
	seen := make(map[string]struct{}, len(matches))
	var names []string
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "…"
}

func derefID(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
