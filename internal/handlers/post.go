package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/services"
)

type Posts interface {
	Create(ctx context.Context, sess auth.Session, in services.PostInput) (*models.Post, error)
	Update(ctx context.Context, sess auth.Session, id uint, in services.PostInput) (*models.Post, error)
	Delete(ctx context.Context, sess auth.Session, id uint) error
	List(ctx context.Context, sess auth.Session, includeDrafts bool, page repository.Page) ([]models.Post, int64, error)
	GetBySlug(ctx context.Context, sess auth.Session, slug string) (*services.PostDetail, error)
}

type PostHandler struct {
	posts Posts
}

func NewPostHandler(posts Posts) *PostHandler {
	return &PostHandler{posts: posts}
}

// List 文章列表，管理员可用 ?drafts=true 查看草稿
func (h *PostHandler) List(c *gin.Context) {
	list, total, err := h.posts.List(c.Request.Context(), session(c), boolQuery(c, "drafts"), pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}

// Detail 文章详情 GET /api/p/:slug
func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.GetBySlug(c.Request.Context(), session(c), c.Param("slug"))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Create(c *gin.Context) {
	var req services.PostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.posts.Create(c.Request.Context(), session(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *PostHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.PostInput
	if !bindJSON(c, &req) {
		return
	}
	post, err := h.posts.Update(c.Request.Context(), session(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), session(c), id); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}
