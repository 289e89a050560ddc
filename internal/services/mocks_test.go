package services

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"inkwell/internal/apperr"
	"inkwell/internal/models"
	"inkwell/internal/repository"
)

// MockCommentRepository mocks repository.CommentRepository
type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, c *models.Comment) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID uint, vis repository.Visibility) ([]models.Comment, error) {
	args := m.Called(ctx, postID, vis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListPending(ctx context.Context, limit int) ([]models.Comment, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockCommentRepository) CountApprovedByPosts(ctx context.Context, postIDs []uint) (map[uint]int64, error) {
	args := m.Called(ctx, postIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint]int64), args.Error(1)
}

func (m *MockCommentRepository) UpdateContent(ctx context.Context, id uint, content string, editedAt time.Time) error {
	args := m.Called(ctx, id, content, editedAt)
	return args.Error(0)
}

func (m *MockCommentRepository) Approve(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockReplyRepository mocks repository.ReplyRepository
type MockReplyRepository struct {
	mock.Mock
}

func (m *MockReplyRepository) Create(ctx context.Context, r *models.Reply) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReplyRepository) GetByID(ctx context.Context, id uint) (*models.Reply, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reply), args.Error(1)
}

func (m *MockReplyRepository) ListByComments(ctx context.Context, ids []uint, vis repository.Visibility) ([]models.Reply, error) {
	args := m.Called(ctx, ids, vis)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reply), args.Error(1)
}

func (m *MockReplyRepository) ListPending(ctx context.Context, limit int) ([]models.Reply, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reply), args.Error(1)
}

func (m *MockReplyRepository) Approve(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReplyRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPostRepository mocks repository.PostRepository
type MockPostRepository struct {
	mock.Mock
}

func (m *MockPostRepository) Create(ctx context.Context, p *models.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, publishedOnly bool, page repository.Page) ([]models.Post, int64, error) {
	args := m.Called(ctx, publishedOnly, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Post), args.Get(1).(int64), args.Error(2)
}

func (m *MockPostRepository) Update(ctx context.Context, p *models.Post) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPostRepository) IncrementViews(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository mocks repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *models.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsernames(ctx context.Context, names []string) ([]models.User, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) ListIDs(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, query string, page repository.Page) ([]models.User, int64, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

// MockReportRepository mocks repository.ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Create(ctx context.Context, r *models.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockReportRepository) List(ctx context.Context, filter repository.ReportFilter) ([]models.Report, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Report), args.Get(1).(int64), args.Error(2)
}

func (m *MockReportRepository) Resolve(ctx context.Context, id uint, outcome models.ReportStatus, resolverID uint, at time.Time) error {
	args := m.Called(ctx, id, outcome, resolverID, at)
	return args.Error(0)
}

// MockBookmarkRepository mocks repository.BookmarkRepository
type MockBookmarkRepository struct {
	mock.Mock
}

func (m *MockBookmarkRepository) Toggle(ctx context.Context, userID, postID uint) error {
	args := m.Called(ctx, userID, postID)
	return args.Error(0)
}

func (m *MockBookmarkRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	args := m.Called(ctx, userID, postID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookmarkRepository) CountByPost(ctx context.Context, postID uint) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookmarkRepository) ListByUser(ctx context.Context, userID uint, page repository.Page) ([]models.Bookmark, int64, error) {
	args := m.Called(ctx, userID, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Bookmark), args.Get(1).(int64), args.Error(2)
}

func (m *MockBookmarkRepository) UserIDsByPost(ctx context.Context, postID uint) ([]uint, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

// MockNotifier records fan-out calls.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, recipients []uint, n Notice) error {
	args := m.Called(ctx, recipients, n)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendReplyNotification(email string, data ReplyMail) {
	m.Called(email, data)
}

// fakeLikes is an in-memory LikeRepository keyed by (comment, user), the same
// uniqueness the database index enforces.
type fakeLikes struct {
	mu   sync.Mutex
	rows map[[2]uint]struct{}
	fail error
}

func newFakeLikes() *fakeLikes {
	return &fakeLikes{rows: make(map[[2]uint]struct{})}
}

func (f *fakeLikes) Toggle(_ context.Context, commentID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	key := [2]uint{commentID, userID}
	if _, ok := f.rows[key]; ok {
		delete(f.rows, key)
		return nil
	}
	f.rows[key] = struct{}{}
	return nil
}

func (f *fakeLikes) Exists(_ context.Context, commentID, userID uint) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[[2]uint{commentID, userID}]
	return ok, nil
}

func (f *fakeLikes) CountByComment(_ context.Context, commentID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k := range f.rows {
		if k[0] == commentID {
			n++
		}
	}
	return n, nil
}

func (f *fakeLikes) CountByComments(ctx context.Context, ids []uint) (map[uint]int64, error) {
	out := make(map[uint]int64)
	for _, id := range ids {
		n, _ := f.CountByComment(ctx, id)
		if n > 0 {
			out[id] = n
		}
	}
	return out, nil
}

func (f *fakeLikes) LikedByUser(_ context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint]bool)
	for _, id := range ids {
		if _, ok := f.rows[[2]uint{id, userID}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

// fakeNotifications is an in-memory NotificationRepository.
type fakeNotifications struct {
	mu     sync.Mutex
	rows   []models.Notification
	nextID uint
	fail   error
}

func (f *fakeNotifications) CreateBatch(_ context.Context, batch []models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	for _, n := range batch {
		f.nextID++
		n.ID = f.nextID
		f.rows = append(f.rows, n)
	}
	return nil
}

func (f *fakeNotifications) ListByUser(_ context.Context, userID uint, unreadOnly bool, _ repository.Page) ([]models.Notification, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Notification
	for _, n := range f.rows {
		if n.UserID == userID && (!unreadOnly || !n.IsRead) {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows[i].IsRead = true
			return nil
		}
	}
	return apperr.NotFound("通知不存在")
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for i := range f.rows {
		if f.rows[i].UserID == userID && !f.rows[i].IsRead {
			f.rows[i].IsRead = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) UnreadCount(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) Delete(_ context.Context, id, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("通知不存在")
}
