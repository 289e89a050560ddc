package services

import (
	"context"
	"io"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// 用户名只允许字母、数字、下划线，便于 @提及
var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_]{2,50}$`)

const MinPasswordLength = 6

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ProfileInput struct {
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Website  string `json:"website"`
}

// LoginResult carries the user plus a bearer token for API clients.
type LoginResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// LoginRecorder records successful logins.
type LoginRecorder interface {
	RecordLogin(ctx context.Context, userID uint, ip, userAgent string) (*models.LoginHistory, error)
}

type UserService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	history  LoginRecorder
	uploader *ImageUploader
	now      func() time.Time
}

func NewUserService(users repository.UserRepository, tokens *auth.TokenManager, history LoginRecorder, uploader *ImageUploader) *UserService {
	return &UserService{users: users, tokens: tokens, history: history, uploader: uploader, now: time.Now}
}

func validateUsername(name string) error {
	if !usernamePattern.MatchString(name) {
		return apperr.Validation("用户名为 2-50 位字母、数字或下划线")
	}
	return nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if in.Username == "" {
		// 没填用户名时取邮箱前缀
		if at := strings.Index(in.Email, "@"); at > 0 {
			in.Username = in.Email[:at]
		}
	}
	if err := validateUsername(in.Username); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperr.Validation("邮箱格式不正确")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperr.Validation("密码至少6位")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "注册失败", err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict("用户名或邮箱已被注册")
		}
		return nil, err
	}
	log.Infof("[user] registered %s (%d)", user.Username, user.ID)
	return user, nil
}

// Login checks credentials, refuses banned accounts and records the login event.
func (s *UserService) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return nil, apperr.Unauthenticated("邮箱或密码错误")
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, user.Password) {
		return nil, apperr.Unauthenticated("邮箱或密码错误")
	}

	sess := auth.FromUser(user)
	if sess.IsBanned(s.now()) {
		return nil, apperr.PermissionDenied("账号已被封禁")
	}

	token, expires, err := s.tokens.Issue(sess)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "登录失败", err)
	}

	if _, err := s.history.RecordLogin(ctx, user.ID, ip, userAgent); err != nil {
		log.WithError(err).Warnf("[user] failed to record login of %d", user.ID)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: expires}, nil
}

// SessionFor loads the current state of a user into a Session. Unknown ids yield Anonymous.
func (s *UserService) SessionFor(ctx context.Context, userID uint) (auth.Session, error) {
	if userID == 0 {
		return auth.Anonymous, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperr.HasCode(err, apperr.CodeNotFound) {
			return auth.Anonymous, nil
		}
		return auth.Anonymous, err
	}
	return auth.FromUser(user), nil
}

func (s *UserService) GetProfile(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) UpdateProfile(ctx context.Context, sess auth.Session, in ProfileInput) (*models.User, error) {
	if !sess.IsAuthenticated() {
		return nil, apperr.Unauthenticated("请先登录")
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Bio = strings.TrimSpace(in.Bio)
	in.Website = strings.TrimSpace(in.Website)

	fields := map[string]interface{}{"bio": in.Bio, "website": in.Website}
	if in.Username != "" {
		if err := validateUsername(in.Username); err != nil {
			return nil, err
		}
		fields["username"] = in.Username
	}
	if utf8.RuneCountInString(in.Bio) > 200 {
		return nil, apperr.Validation("简介不能超过 200 字")
	}
	if in.Website != "" && !strings.HasPrefix(in.Website, "http://") && !strings.HasPrefix(in.Website, "https://") {
		return nil, apperr.Validation("网址需以 http:// 或 https:// 开头")
	}

	if err := s.users.UpdateFields(ctx, sess.UserID, fields); err != nil {
		if apperr.HasCode(err, apperr.CodeConflict) {
			return nil, apperr.Conflict("用户名已被占用")
		}
		return nil, err
	}
	return s.users.GetByID(ctx, sess.UserID)
}

// UploadAvatar stores the image and points the user's avatar at it.
func (s *UserService) UploadAvatar(ctx context.Context, sess auth.Session, r io.Reader, size int64) (*models.User, error) {
	if !sess.IsAuthenticated() {
		return nil, apperr.Unauthenticated("请先登录")
	}
	result, err := s.uploader.Upload(ctx, "avatars", r, size)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdateFields(ctx, sess.UserID, map[string]interface{}{"avatar": result.URL}); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, sess.UserID)
}

func (s *UserService) ListUsers(ctx context.Context, sess auth.Session, query string, page repository.Page) ([]models.User, int64, error) {
	if !sess.IsAdmin() {
		return nil, 0, apperr.PermissionDenied("需要管理员权限")
	}
	return s.users.List(ctx, strings.TrimSpace(query), page)
}

func (s *UserService) SetRole(ctx context.Context, sess auth.Session, userID uint, role string) error {
	if !sess.IsAdmin() {
		return apperr.PermissionDenied("需要管理员权限")
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return apperr.Validation("角色只能是 user 或 admin")
	}
	if userID == sess.UserID {
		return apperr.Validation("不能修改自己的角色")
	}
	if err := s.users.UpdateFields(ctx, userID, map[string]interface{}{"role": role}); err != nil {
		return err
	}
	log.Infof("[user] admin %d set role of %d to %s", sess.UserID, userID, role)
	return nil
}

// Punish 惩罚用户（禁言、封禁）。days 为 0 表示永久，status 为 0 表示解除
func (s *UserService) Punish(ctx context.Context, sess auth.Session, userID uint, status, days int) error {
	if !sess.IsAdmin() {
		return apperr.PermissionDenied("需要管理员权限")
	}
	if status < models.UserStatusNormal || status > models.UserStatusBanned {
		return apperr.Validation("未知的用户状态")
	}
	if days < 0 {
		return apperr.Validation("天数不能为负")
	}
	if userID == sess.UserID {
		return apperr.Validation("不能处罚自己")
	}

	updates := map[string]interface{}{"status": status}
	if status != models.UserStatusNormal && days > 0 {
		expires := s.now().AddDate(0, 0, days)
		updates["punish_expires"] = &expires
	} else {
		updates["punish_expires"] = nil
	}
	if err := s.users.UpdateFields(ctx, userID, updates); err != nil {
		return err
	}
	log.Infof("[user] admin %d set status of %d to %d for %d days", sess.UserID, userID, status, days)
	return nil
}
