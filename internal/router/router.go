package router

import (
	"github.com/gin-gonic/gin"

	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
)

// Handlers groups every handler the API mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Post         *handlers.PostHandler
	Comment      *handlers.CommentHandler
	Bookmark     *handlers.BookmarkHandler
	Notification *handlers.NotificationHandler
	Announcement *handlers.AnnouncementHandler
	Admin        *handlers.AdminHandler
	Image        *handlers.ImageHandler
	Tools        *handlers.ToolsHandler
}

// RegisterRoutes mounts the JSON API under /api. writes limits comment, reply,
// report and like endpoints per caller.
func RegisterRoutes(r *gin.Engine, h Handlers, writes *middleware.RateLimiter) {
	api := r.Group("/api")

	// 公共路由 (Public Routes)
	api.GET("/posts", h.Post.List)                         // 文章列表
	api.GET("/p/:slug", h.Post.Detail)                     // 文章详情
	api.GET("/posts/:id/comments", h.Comment.List)         // 评论列表（含回复）
	api.GET("/comments/:id/like", h.Comment.LikeState)     // 点赞状态
	api.GET("/u/:id", h.User.Profile)                      // 用户主页
	api.GET("/announcements", h.Announcement.Active)       // 当前公告
	api.GET("/notifications/unread-count", h.Notification.UnreadCount)

	api.GET("/auth/captcha", h.Auth.Captcha)   // 注册验证码
	api.POST("/auth/register", h.Auth.Register) // 提交注册
	api.POST("/auth/login", h.Auth.Login)       // 提交登录
	api.POST("/auth/logout", h.Auth.Logout)     // 退出登录

	tools := api.Group("/tools")
	{
		tools.POST("/base64", h.Tools.Base64)
		tools.POST("/password", h.Tools.Password)
		tools.GET("/color", h.Tools.Color)
		tools.GET("/timestamp", h.Tools.Timestamp)
		tools.GET("/qrcode", h.Tools.QRCode)
		tools.GET("/datagen", h.Tools.DataGen)
	}

	// 受保护路由 (Protected Routes)
	authorized := api.Group("")
	authorized.Use(middleware.AuthRequired())
	{
		limited := authorized.Group("")
		limited.Use(writes.Middleware())
		{
			limited.POST("/posts/:id/comments", h.Comment.Create)   // 发表评论
			limited.POST("/comments/:id/replies", h.Comment.Reply)  // 回复评论
			limited.POST("/comments/:id/like", h.Comment.Like)      // 点赞/取消点赞
			limited.POST("/comments/:id/reports", h.Comment.Report) // 举报评论
		}

		authorized.PUT("/comments/:id", h.Comment.Edit)          // 编辑评论
		authorized.DELETE("/comments/:id", h.Comment.Delete)     // 删除评论
		authorized.DELETE("/replies/:id", h.Comment.DeleteReply) // 删除回复

		authorized.POST("/posts/:id/bookmark", h.Bookmark.Toggle) // 收藏/取消收藏
		authorized.POST("/upload", h.Image.Upload)                // 上传图片

		authorized.GET("/notifications", h.Notification.List)                // 我的通知
		authorized.POST("/notifications/:id/read", h.Notification.Read)      // 标记单条通知为已读
		authorized.POST("/notifications/read-all", h.Notification.ReadAll)   // 全部通知标记为已读
		authorized.DELETE("/notifications/:id", h.Notification.Delete)       // 删除单条通知

		authorized.GET("/me", h.User.Me)
		authorized.PUT("/me", h.User.UpdateSettings)
		authorized.POST("/me/avatar", h.User.UploadAvatar)
		authorized.GET("/me/bookmarks", h.Bookmark.List)
		authorized.GET("/me/logins", h.User.LoginHistory)
	}

	// 管理后台 (Admin Routes)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminRequired())
	{
		admin.POST("/posts", h.Post.Create)
		admin.PUT("/posts/:id", h.Post.Update)
		admin.DELETE("/posts/:id", h.Post.Delete)

		admin.GET("/pending", h.Admin.Pending)                     // 待审核
		admin.POST("/comments/:id/approve", h.Admin.ApproveComment) // 审核通过评论
		admin.POST("/replies/:id/approve", h.Admin.ApproveReply)    // 审核通过回复

		admin.GET("/reports", h.Admin.ListReports)               // 举报列表
		admin.POST("/reports/:id/resolve", h.Admin.HandleReport) // 处理/忽略举报

		admin.GET("/users", h.Admin.ListUsers)
		admin.PUT("/users/:id/role", h.Admin.SetRole)
		admin.PUT("/users/:id/punish", h.Admin.PunishUser)
		admin.GET("/logins", h.Admin.LoginHistory)

		admin.POST("/notifications/broadcast", h.Admin.Broadcast)

		admin.GET("/announcements", h.Announcement.All)
		admin.POST("/announcements", h.Announcement.Create)
		admin.PUT("/announcements/:id", h.Announcement.Update)
		admin.DELETE("/announcements/:id", h.Announcement.Delete)
	}
}
