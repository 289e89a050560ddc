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

type Bookmarks interface {
	Toggle(ctx context.Context, sess auth.Session, postID uint) (services.BookmarkState, error)
	List(ctx context.Context, sess auth.Session, page repository.Page) ([]models.Bookmark, int64, error)
}

type BookmarkHandler struct {
	bookmarks Bookmarks
}

func NewBookmarkHandler(bookmarks Bookmarks) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// Toggle 切换收藏状态 - 收藏/取消收藏
func (h *BookmarkHandler) Toggle(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	state, err := h.bookmarks.Toggle(c.Request.Context(), session(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// List 我的收藏
func (h *BookmarkHandler) List(c *gin.Context) {
	list, total, err := h.bookmarks.List(c.Request.Context(), session(c), pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}
