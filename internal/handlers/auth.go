package handlers

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/services"
)

const captchaSessionKey = "captcha_answer"

// Accounts is the part of UserService the auth endpoints need.
type Accounts interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password, ip, userAgent string) (*services.LoginResult, error)
}

type AuthHandler struct {
	users          Accounts
	captchaService *services.CaptchaService
}

func NewAuthHandler(users Accounts, captcha *services.CaptchaService) *AuthHandler {
	return &AuthHandler{users: users, captchaService: captcha}
}

type registerRequest struct {
	services.RegisterInput
	Captcha string `json:"captcha"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Captcha 生成算术验证码，答案存入 session
func (h *AuthHandler) Captcha(c *gin.Context) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(captchaSessionKey, answer)
	if err := session.Save(); err != nil {
		Fail(c, apperr.Wrap(apperr.CodeInternal, "保存会话失败", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"question": question})
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	// 验证码只能用一次
	session := sessions.Default(c)
	expected, ok := session.Get(captchaSessionKey).(int)
	session.Delete(captchaSessionKey)
	if err := session.Save(); err != nil {
		log.WithError(err).Warn("[auth] failed to clear captcha")
	}
	if !ok || !h.captchaService.Verify(req.Captcha, expected) {
		Fail(c, apperr.Validation("验证码错误"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.RegisterInput)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login 登录成功后写入 cookie session，同时返回给 API 客户端用的 token
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.users.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		Fail(c, err)
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, result.User.ID)
	if err := session.Save(); err != nil {
		Fail(c, apperr.Wrap(apperr.CodeInternal, "保存会话失败", err))
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		log.WithError(err).Warn("[auth] failed to clear session")
	}
	noContent(c)
}
