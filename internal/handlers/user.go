package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/services"
)

// Profiles is the part of UserService the profile endpoints need.
type Profiles interface {
	GetProfile(ctx context.Context, id uint) (*models.User, error)
	UpdateProfile(ctx context.Context, sess auth.Session, in services.ProfileInput) (*models.User, error)
	UploadAvatar(ctx context.Context, sess auth.Session, r io.Reader, size int64) (*models.User, error)
}

// LoginHistoryReader lists login events.
type LoginHistoryReader interface {
	ListMine(ctx context.Context, sess auth.Session, page repository.Page) ([]models.LoginHistory, int64, error)
	ListAll(ctx context.Context, sess auth.Session, userID uint, page repository.Page) ([]models.LoginHistory, int64, error)
}

type UserHandler struct {
	users   Profiles
	history LoginHistoryReader
}

func NewUserHandler(users Profiles, history LoginHistoryReader) *UserHandler {
	return &UserHandler{users: users, history: history}
}

// Profile 用户主页
func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetProfile(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) Me(c *gin.Context) {
	sess := session(c)
	user, err := h.users.GetProfile(c.Request.Context(), sess.UserID)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) UpdateSettings(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.users.UpdateProfile(c.Request.Context(), session(c), req)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UploadAvatar expects a multipart field named "avatar".
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		Fail(c, apperr.Validation("请选择要上传的头像"))
		return
	}
	defer file.Close()

	user, err := h.users.UploadAvatar(c.Request.Context(), session(c), file, header.Size)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// LoginHistory 我的登录记录
func (h *UserHandler) LoginHistory(c *gin.Context) {
	list, total, err := h.history.ListMine(c.Request.Context(), session(c), pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}
