package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

// Comments is the comment lifecycle as seen by readers and authors.
type Comments interface {
	CreateComment(ctx context.Context, sess auth.Session, postID uint, content string) (*models.Comment, error)
	ListComments(ctx context.Context, sess auth.Session, postID uint) ([]models.Comment, error)
	EditComment(ctx context.Context, sess auth.Session, id uint, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, sess auth.Session, id uint) error
	CreateReply(ctx context.Context, sess auth.Session, commentID uint, content string) (*models.Reply, error)
	DeleteReply(ctx context.Context, sess auth.Session, id uint) error
}

type Likes interface {
	ToggleLike(ctx context.Context, sess auth.Session, commentID uint) (services.LikeState, error)
	State(ctx context.Context, sess auth.Session, commentID uint) (services.LikeState, error)
}

type ReportFiler interface {
	FileReport(ctx context.Context, sess auth.Session, commentID uint, reason models.ReportReason, description string) (*models.Report, error)
}

type CommentHandler struct {
	comments Comments
	likes    Likes
	reports  ReportFiler
}

func NewCommentHandler(comments Comments, likes Likes, reports ReportFiler) *CommentHandler {
	return &CommentHandler{comments: comments, likes: likes, reports: reports}
}

type contentRequest struct {
	Content string `json:"content"`
}

type reportRequest struct {
	Reason      models.ReportReason `json:"reason"`
	Description string              `json:"description"`
}

// List GET /api/posts/:id/comments
func (h *CommentHandler) List(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	list, err := h.comments.ListComments(c.Request.Context(), session(c), postID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

// Create POST /api/posts/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.CreateComment(c.Request.Context(), session(c), postID, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// Edit PUT /api/comments/:id
func (h *CommentHandler) Edit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.EditComment(c.Request.Context(), session(c), id, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

// Delete DELETE /api/comments/:id，连同回复、点赞、举报一起删除
func (h *CommentHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.DeleteComment(c.Request.Context(), session(c), id); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}

// Reply POST /api/comments/:id/replies
func (h *CommentHandler) Reply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}
	reply, err := h.comments.CreateReply(c.Request.Context(), session(c), id, req.Content)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, reply)
}

// DeleteReply DELETE /api/replies/:id
func (h *CommentHandler) DeleteReply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.comments.DeleteReply(c.Request.Context(), session(c), id); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}

// Like POST /api/comments/:id/like 点赞/取消点赞
func (h *CommentHandler) Like(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	state, err := h.likes.ToggleLike(c.Request.Context(), session(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// LikeState GET /api/comments/:id/like
func (h *CommentHandler) LikeState(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	state, err := h.likes.State(c.Request.Context(), session(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Report POST /api/comments/:id/reports
func (h *CommentHandler) Report(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req reportRequest
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.reports.FileReport(c.Request.Context(), session(c), id, req.Reason, req.Description)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}
