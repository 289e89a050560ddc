package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

type Announcements interface {
	ListActive(ctx context.Context) ([]models.Announcement, error)
	ListAll(ctx context.Context, sess auth.Session) ([]models.Announcement, error)
	Create(ctx context.Context, sess auth.Session, in services.AnnouncementInput) (*models.Announcement, error)
	Update(ctx context.Context, sess auth.Session, id uint, in services.AnnouncementInput) (*models.Announcement, error)
	Delete(ctx context.Context, sess auth.Session, id uint) error
}

type AnnouncementHandler struct {
	announcements Announcements
}

func NewAnnouncementHandler(announcements Announcements) *AnnouncementHandler {
	return &AnnouncementHandler{announcements: announcements}
}

// Active 当前生效的公告
func (h *AnnouncementHandler) Active(c *gin.Context) {
	list, err := h.announcements.ListActive(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *AnnouncementHandler) All(c *gin.Context) {
	list, err := h.announcements.ListAll(c.Request.Context(), session(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list})
}

func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req services.AnnouncementInput
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.announcements.Create(c.Request.Context(), session(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *AnnouncementHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req services.AnnouncementInput
	if !bindJSON(c, &req) {
		return
	}
	a, err := h.announcements.Update(c.Request.Context(), session(c), id, req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.announcements.Delete(c.Request.Context(), session(c), id); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}
