package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/db"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/repository"
	"inkwell/internal/router"
	"inkwell/internal/services"
	"inkwell/internal/utils"
)

const (
	renderCacheSize   = 512
	announcementTTL   = time.Minute
	sessionCookieName = "inkwell_session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[main] %v", err)
	}
	cfg.ConfigureLogger()

	// Initialize Database
	database, err := db.Open(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	if err := db.SeedAdmin(database, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("[main] failed to seed admin: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storage := services.DisabledStorage()
	if cfg.StorageEnabled() {
		minio, err := services.NewMinioStorage(ctx, cfg)
		if err != nil {
			log.Fatalf("[main] %v", err)
		}
		storage = minio
	} else {
		log.Warn("[main] object storage not configured, uploads are disabled")
	}

	renderer, err := utils.NewRenderer(renderCacheSize)
	if err != nil {
		log.Fatalf("[main] failed to create markdown renderer: %v", err)
	}

	// Repositories
	users := repository.NewUserRepository(database)
	posts := repository.NewPostRepository(database)
	comments := repository.NewCommentRepository(database)
	replies := repository.NewReplyRepository(database)
	likes := repository.NewLikeRepository(database)
	reports := repository.NewReportRepository(database)
	notifications := repository.NewNotificationRepository(database)
	bookmarks := repository.NewBookmarkRepository(database)
	announcements := repository.NewAnnouncementRepository(database)
	logins := repository.NewLoginHistoryRepository(database)

	// Services
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	uploader := services.NewImageUploader(storage, cfg.UploadMaxBytes)
	notificationService := services.NewNotificationService(notifications, users)
	loginHistory := services.NewLoginHistoryService(logins)
	userService := services.NewUserService(users, tokens, loginHistory, uploader)
	commentService := services.NewCommentService(services.CommentStores{
		Posts:    posts,
		Comments: comments,
		Replies:  replies,
		Likes:    likes,
		Users:    users,
	}, services.NewModerationGate(), notificationService, services.NewMailService(cfg), cfg.SiteURL)
	engagement := services.NewEngagementService(comments, posts, likes)
	reportService := services.NewReportService(comments, posts, reports)
	postService := services.NewPostService(posts, comments, bookmarks, notificationService, renderer)
	bookmarkService := services.NewBookmarkService(posts, bookmarks)
	announcementService, err := services.NewAnnouncementService(announcements, announcementTTL)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	writeLimiter, err := middleware.NewRateLimiter(cfg.WriteRatePerMinute)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}

	// Initialize Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Setup Sessions
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.JWTExpiry.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionCookieName, store))
	r.Use(middleware.LoadUser(userService, tokens))

	router.RegisterRoutes(r, router.Handlers{
		Auth:         handlers.NewAuthHandler(userService, services.NewCaptchaService()),
		User:         handlers.NewUserHandler(userService, loginHistory),
		Post:         handlers.NewPostHandler(postService),
		Comment:      handlers.NewCommentHandler(commentService, engagement, reportService),
		Bookmark:     handlers.NewBookmarkHandler(bookmarkService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Announcement: handlers.NewAnnouncementHandler(announcementService),
		Admin:        handlers.NewAdminHandler(userService, loginHistory, commentService, reportService, notificationService),
		Image:        handlers.NewImageHandler(uploader),
		Tools:        handlers.NewToolsHandler(),
	}, writeLimiter)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("[main] inkwell server starting on %s", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] HTTP server error: %v", err)
		}
		log.Info("[main] stopped serving new connections")
	}()

	<-ctx.Done()

	shutdownCtx, shutdownRelease := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownRelease()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("[main] HTTP shutdown error: %v", err)
		os.Exit(1)
	}
	if sqlDB, err := database.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("[main] server stopped")
}
