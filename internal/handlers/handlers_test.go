package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inkwell/internal/apperr"
	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/services"
)

var (
	admin = auth.Session{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	alice = auth.Session{UserID: 2, Username: "alice", Role: models.RoleUser}
)

type fixedSession struct{ sess auth.Session }

func (f fixedSession) SessionFor(context.Context, uint) (auth.Session, error) { return f.sess, nil }
func (f fixedSession) Parse(string) (*auth.Claims, error) {
	return &auth.Claims{UserID: f.sess.UserID}, nil
}

// setupRouter builds an engine where a request carrying any bearer token runs as sess.
func setupRouter(sess auth.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test", cookie.NewStore([]byte("secret"))))
	r.Use(middleware.LoadUser(fixedSession{sess}, fixedSession{sess}))
	return r
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) apperr.Code {
	var body struct {
		Error middleware.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

type MockComments struct {
	mock.Mock
}

func (m *MockComments) CreateComment(ctx context.Context, sess auth.Session, postID uint, content string) (*models.Comment, error) {
	args := m.Called(ctx, sess, postID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockComments) ListComments(ctx context.Context, sess auth.Session, postID uint) ([]models.Comment, error) {
	args := m.Called(ctx, sess, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockComments) EditComment(ctx context.Context, sess auth.Session, id uint, content string) (*models.Comment, error) {
	args := m.Called(ctx, sess, id, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockComments) DeleteComment(ctx context.Context, sess auth.Session, id uint) error {
	return m.Called(ctx, sess, id).Error(0)
}

func (m *MockComments) CreateReply(ctx context.Context, sess auth.Session, commentID uint, content string) (*models.Reply, error) {
	args := m.Called(ctx, sess, commentID, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reply), args.Error(1)
}

func (m *MockComments) DeleteReply(ctx context.Context, sess auth.Session, id uint) error {
	return m.Called(ctx, sess, id).Error(0)
}

type MockLikes struct {
	mock.Mock
}

func (m *MockLikes) ToggleLike(ctx context.Context, sess auth.Session, commentID uint) (services.LikeState, error) {
	args := m.Called(ctx, sess, commentID)
	return args.Get(0).(services.LikeState), args.Error(1)
}

func (m *MockLikes) State(ctx context.Context, sess auth.Session, commentID uint) (services.LikeState, error) {
	args := m.Called(ctx, sess, commentID)
	return args.Get(0).(services.LikeState), args.Error(1)
}

type MockReports struct {
	mock.Mock
}

func (m *MockReports) FileReport(ctx context.Context, sess auth.Session, commentID uint, reason models.ReportReason, description string) (*models.Report, error) {
	args := m.Called(ctx, sess, commentID, reason, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReports) ListReports(ctx context.Context, sess auth.Session, status models.ReportStatus, page repository.Page) ([]models.Report, int64, error) {
	args := m.Called(ctx, sess, status, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReports) ResolveReport(ctx context.Context, sess auth.Session, reportID uint, outcome models.ReportStatus) error {
	return m.Called(ctx, sess, reportID, outcome).Error(0)
}

func newCommentRouter(sess auth.Session) (*gin.Engine, *MockComments, *MockLikes, *MockReports) {
	comments, likes, reports := new(MockComments), new(MockLikes), new(MockReports)
	h := NewCommentHandler(comments, likes, reports)
	r := setupRouter(sess)
	r.GET("/api/posts/:id/comments", h.List)
	r.POST("/api/posts/:id/comments", h.Create)
	r.PUT("/api/comments/:id", h.Edit)
	r.DELETE("/api/comments/:id", h.Delete)
	r.POST("/api/comments/:id/replies", h.Reply)
	r.POST("/api/comments/:id/like", h.Like)
	r.POST("/api/comments/:id/reports", h.Report)
	return r, comments, likes, reports
}

func TestCreateComment_Success(t *testing.T) {
	r, comments, _, _ := newCommentRouter(alice)
	uid := alice.UserID
	comments.On("CreateComment", mock.Anything, alice, uint(10), "hello").
		Return(&models.Comment{ID: 5, PostID: 10, UserID: &uid, Content: "hello"}, nil)

	w := doJSON(r, http.MethodPost, "/api/posts/10/comments", contentRequest{Content: "hello"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var got models.Comment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, uint(5), got.ID)
	assert.False(t, got.IsApproved)
	comments.AssertExpectations(t)
}

func TestCreateComment_Errors(t *testing.T) {
	r, comments, _, _ := newCommentRouter(alice)

	w := doJSON(r, http.MethodPost, "/api/posts/abc/comments", contentRequest{Content: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apperr.CodeValidation, errorCode(t, w))

	comments.On("CreateComment", mock.Anything, alice, uint(10), "").Return(nil, apperr.Validation("评论内容不能为空"))
	w = doJSON(r, http.MethodPost, "/api/posts/10/comments", contentRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	comments.On("CreateComment", mock.Anything, alice, uint(11), "hi").Return(nil, apperr.PermissionDenied("你已被禁言"))
	w = doJSON(r, http.MethodPost, "/api/posts/11/comments", contentRequest{Content: "hi"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, apperr.CodePermissionDenied, errorCode(t, w))
}

func TestDeleteComment(t *testing.T) {
	r, comments, _, _ := newCommentRouter(alice)
	comments.On("DeleteComment", mock.Anything, alice, uint(5)).Return(nil)
	comments.On("DeleteComment", mock.Anything, alice, uint(6)).Return(apperr.NotFound("评论不存在"))

	assert.Equal(t, http.StatusNoContent, doJSON(r, http.MethodDelete, "/api/comments/5", nil).Code)
	w := doJSON(r, http.MethodDelete, "/api/comments/6", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, apperr.CodeNotFound, errorCode(t, w))
}

func TestLikeToggle(t *testing.T) {
	r, _, likes, _ := newCommentRouter(alice)
	likes.On("ToggleLike", mock.Anything, alice, uint(5)).Return(services.LikeState{Liked: true, Count: 3}, nil).Once()

	w := doJSON(r, http.MethodPost, "/api/comments/5/like", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"liked":true,"count":3}`, w.Body.String())
}

func TestReportComment(t *testing.T) {
	r, _, _, reports := newCommentRouter(alice)
	reports.On("FileReport", mock.Anything, alice, uint(5), models.ReportReasonSpam, "ads").
		Return(&models.Report{ID: 1, CommentID: 5, Reason: models.ReportReasonSpam, Status: models.ReportStatusPending}, nil)
	reports.On("FileReport", mock.Anything, alice, uint(5), models.ReportReason("rude"), "").
		Return(nil, apperr.Validation("未知的举报原因"))

	w := doJSON(r, http.MethodPost, "/api/comments/5/reports", reportRequest{Reason: models.ReportReasonSpam, Description: "ads"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodPost, "/api/comments/5/reports", reportRequest{Reason: "rude"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleReport_InvalidTransition(t *testing.T) {
	reports := new(MockReports)
	h := NewAdminHandler(nil, nil, nil, reports, nil)
	r := setupRouter(admin)
	r.POST("/api/admin/reports/:id/resolve", h.HandleReport)

	reports.On("ResolveReport", mock.Anything, admin, uint(7), models.ReportStatusResolved).Return(nil).Once()
	reports.On("ResolveReport", mock.Anything, admin, uint(7), models.ReportStatusDismissed).Return(apperr.InvalidTransition("举报已处理")).Once()
	reports.On("ResolveReport", mock.Anything, admin, uint(8), models.ReportStatusResolved).Return(apperr.NotFound("举报不存在")).Once()

	w := doJSON(r, http.MethodPost, "/api/admin/reports/7/resolve", resolveRequest{Outcome: models.ReportStatusResolved})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/reports/7/resolve", resolveRequest{Outcome: models.ReportStatusDismissed})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, apperr.CodeInvalidTransition, errorCode(t, w))

	w = doJSON(r, http.MethodPost, "/api/admin/reports/8/resolve", resolveRequest{Outcome: models.ReportStatusResolved})
	assert.Equal(t, http.StatusNotFound, w.Code)
	reports.AssertExpectations(t)
}

func TestListReports(t *testing.T) {
	reports := new(MockReports)
	h := NewAdminHandler(nil, nil, nil, reports, nil)
	r := setupRouter(admin)
	r.GET("/api/admin/reports", h.ListReports)

	reports.On("ListReports", mock.Anything, admin, models.ReportStatusPending, repository.NewPage(2, 10)).
		Return([]models.Report{{ID: 3}}, int64(11), nil)

	w := doJSON(r, http.MethodGet, "/api/admin/reports?status=pending&page=2&size=10", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Items []models.Report `json:"items"`
		Total int64           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.EqualValues(t, 11, body.Total)
	require.Len(t, body.Items, 1)
	assert.Equal(t, uint(3), body.Items[0].ID)
}
