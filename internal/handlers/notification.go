package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// Inbox is a user's view of their notifications.
type Inbox interface {
	List(ctx context.Context, sess auth.Session, unreadOnly bool, page repository.Page) ([]models.Notification, int64, error)
	MarkRead(ctx context.Context, sess auth.Session, id uint) error
	MarkAllRead(ctx context.Context, sess auth.Session) (int64, error)
	UnreadCount(ctx context.Context, sess auth.Session) (int64, error)
	Delete(ctx context.Context, sess auth.Session, id uint) error
}

type NotificationHandler struct {
	inbox Inbox
}

func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// List 我的通知，?unread=true 只看未读
func (h *NotificationHandler) List(c *gin.Context) {
	list, total, err := h.inbox.List(c.Request.Context(), session(c), boolQuery(c, "unread"), pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.inbox.UnreadCount(c.Request.Context(), session(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) Read(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.MarkRead(c.Request.Context(), session(c), id); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	n, err := h.inbox.MarkAllRead(c.Request.Context(), session(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.inbox.Delete(c.Request.Context(), session(c), id); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}
