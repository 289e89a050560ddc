package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
)

// SessionUserKey is the cookie-session key holding the logged in user id.
const SessionUserKey = "user_id"

const sessionKey = "session"

// SessionResolver loads the current state of a user.
type SessionResolver interface {
	SessionFor(ctx context.Context, userID uint) (auth.Session, error)
}

// TokenParser validates bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// LoadUser resolves the caller from a Bearer token or the cookie session and stores
// an auth.Session on the context. Requests without credentials continue as Anonymous.
func LoadUser(users SessionResolver, tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		var userID uint

		if header := c.GetHeader("Authorization"); header != "" {
			// format: "Bearer <token>"
			scheme, token, ok := strings.Cut(header, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				AbortWithError(c, apperr.Unauthenticated("Authorization 头格式错误"))
				return
			}
			claims, err := tokens.Parse(token)
			if err != nil {
				AbortWithError(c, apperr.Unauthenticated("登录已失效，请重新登录"))
				return
			}
			userID = claims.UserID
		} else {
			userID = sessionUserID(sessions.Default(c).Get(SessionUserKey))
		}

		sess := auth.Anonymous
		if userID != 0 {
			var err error
			sess, err = users.SessionFor(c.Request.Context(), userID)
			if err != nil {
				AbortWithError(c, err)
				return
			}
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func sessionUserID(v interface{}) uint {
	switch id := v.(type) {
	case uint:
		return id
	case int:
		if id > 0 {
			return uint(id)
		}
	case int64:
		if id > 0 {
			return uint(id)
		}
	}
	return 0
}

// CurrentSession returns the session LoadUser stored, or Anonymous.
func CurrentSession(c *gin.Context) auth.Session {
	if v, ok := c.Get(sessionKey); ok {
		if s, ok := v.(auth.Session); ok {
			return s
		}
	}
	return auth.Anonymous
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAuthenticated() {
			AbortWithError(c, apperr.Unauthenticated("请先登录"))
			return
		}
		c.Next()
	}
}

// AdminRequired ensures the caller is an administrator.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := CurrentSession(c)
		if !sess.IsAuthenticated() {
			AbortWithError(c, apperr.Unauthenticated("请先登录"))
			return
		}
		if !sess.IsAdmin() {
			AbortWithError(c, apperr.PermissionDenied("需要管理员权限"))
			return
		}
		c.Next()
	}
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// AbortWithError writes err as {"error": {...}} with the status its code maps to.
// Internal errors are logged and never leak their message.
func AbortWithError(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code == "" {
		code = apperr.CodeInternal
	}
	message := "服务器内部错误"
	var e *apperr.Error
	if errors.As(err, &e) && code != apperr.CodeInternal {
		message = e.Message
	}
	status := apperr.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).
			Errorf("[http] %s %s failed", c.Request.Method, c.Request.URL.Path)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": ErrorBody{Code: code, Message: message}})
}
