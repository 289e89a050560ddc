package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/services"
	"inkwell/internal/utils"
)

type UserAdmin interface {
	ListUsers(ctx context.Context, sess auth.Session, query string, page repository.Page) ([]models.User, int64, error)
	SetRole(ctx context.Context, sess auth.Session, userID uint, role string) error
	Punish(ctx context.Context, sess auth.Session, userID uint, status, days int) error
}

// ModerationQueue approves pending comments and replies.
type ModerationQueue interface {
	ListPending(ctx context.Context, sess auth.Session, limit int) (*services.PendingQueue, error)
	ApproveComment(ctx context.Context, sess auth.Session, id uint) (*models.Comment, error)
	ApproveReply(ctx context.Context, sess auth.Session, id uint) (*models.Reply, error)
}

type ReportDesk interface {
	ListReports(ctx context.Context, sess auth.Session, status models.ReportStatus, page repository.Page) ([]models.Report, int64, error)
	ResolveReport(ctx context.Context, sess auth.Session, reportID uint, outcome models.ReportStatus) error
}

type Broadcaster interface {
	Broadcast(ctx context.Context, sess auth.Session, target services.BroadcastTarget, n services.Notice) (int, error)
}

type AdminHandler struct {
	users    UserAdmin
	history  LoginHistoryReader
	queue    ModerationQueue
	reports  ReportDesk
	notifier Broadcaster
}

func NewAdminHandler(users UserAdmin, history LoginHistoryReader, queue ModerationQueue, reports ReportDesk, notifier Broadcaster) *AdminHandler {
	return &AdminHandler{users: users, history: history, queue: queue, reports: reports, notifier: notifier}
}

type roleRequest struct {
	Role string `json:"role"`
}

type punishRequest struct {
	Status int `json:"status"` // 0: 正常, 1: 禁言, 2: 封禁
	Days   int `json:"days"`   // 0 表示永久
}

type resolveRequest struct {
	Outcome models.ReportStatus `json:"outcome"`
}

type broadcastRequest struct {
	UserID  uint                    `json:"user_id"`
	All     bool                    `json:"all"`
	Type    models.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Content string                  `json:"content"`
}

// ListUsers 用户列表，?q= 按用户名或邮箱搜索
func (h *AdminHandler) ListUsers(c *gin.Context) {
	list, total, err := h.users.ListUsers(c.Request.Context(), session(c), c.Query("q"), pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}

func (h *AdminHandler) SetRole(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req roleRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.SetRole(c.Request.Context(), session(c), id, req.Role); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}

// PunishUser 惩罚用户（禁言、封禁）
func (h *AdminHandler) PunishUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req punishRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.users.Punish(c.Request.Context(), session(c), id, req.Status, req.Days); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}

// LoginHistory 所有登录记录，?user_id= 只看某个用户
func (h *AdminHandler) LoginHistory(c *gin.Context) {
	userID := utils.StringToUint(c.Query("user_id"))
	list, total, err := h.history.ListAll(c.Request.Context(), session(c), userID, pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}

// Pending 待审核的评论和回复
func (h *AdminHandler) Pending(c *gin.Context) {
	queue, err := h.queue.ListPending(c.Request.Context(), session(c), utils.StringToInt(c.Query("limit")))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, queue)
}

func (h *AdminHandler) ApproveComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	comment, err := h.queue.ApproveComment(c.Request.Context(), session(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comment)
}

func (h *AdminHandler) ApproveReply(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	reply, err := h.queue.ApproveReply(c.Request.Context(), session(c), id)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reply)
}

// ListReports 举报列表，?status=pending|resolved|dismissed
func (h *AdminHandler) ListReports(c *gin.Context) {
	status := models.ReportStatus(c.Query("status"))
	list, total, err := h.reports.ListReports(c.Request.Context(), session(c), status, pageParam(c))
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Items: list, Total: total})
}

// HandleReport 处理/忽略举报，只能从 pending 转出一次
func (h *AdminHandler) HandleReport(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req resolveRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := h.reports.ResolveReport(c.Request.Context(), session(c), id, req.Outcome); err != nil {
		Fail(c, err)
		return
	}
	noContent(c)
}

// Broadcast 向单个用户或全部用户发送通知
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req broadcastRequest
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notifier.Broadcast(c.Request.Context(), session(c),
		services.BroadcastTarget{UserID: req.UserID, All: req.All},
		services.Notice{Type: req.Type, Title: req.Title, Content: req.Content})
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipients": n})
}
