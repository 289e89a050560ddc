package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"inkwell/internal/apperr"
	"inkwell/internal/db"
	"inkwell/internal/models"
)

// setupDB connects to TEST_DATABASE_URL; the tests are integration tests and are
// skipped when no database is available.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}
	conn, err := db.Open(dsn, false)
	require.NoError(t, err)
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, role string) *models.User {
	t.Helper()
	name := "u_" + uuid.NewString()[:8]
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x", Role: role}
	require.NoError(t, conn.Create(u).Error)
	return u
}

func seedPost(t *testing.T, conn *gorm.DB, author *models.User) *models.Post {
	t.Helper()
	p := &models.Post{Slug: "p-" + uuid.NewString(), UserID: author.ID, Title: "hello", Published: true}
	require.NoError(t, conn.Omit("User").Create(p).Error)
	return p
}

func seedComment(t *testing.T, conn *gorm.DB, post *models.Post, author *models.User, approved bool) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: post.ID, UserID: &author.ID, AuthorName: author.Username, Content: "nice post", IsApproved: approved}
	require.NoError(t, NewCommentRepository(conn).Create(context.Background(), c))
	return c
}

func TestCommentDeleteCascades(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	author := seedUser(t, conn, models.RoleUser)
	liker := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, author)
	comment := seedComment(t, conn, post, author, true)

	replies := NewReplyRepository(conn)
	require.NoError(t, replies.Create(ctx, &models.Reply{CommentID: comment.ID, UserID: &liker.ID, AuthorName: liker.Username, Content: "+1"}))
	require.NoError(t, NewLikeRepository(conn).Toggle(ctx, comment.ID, liker.ID))
	require.NoError(t, NewReportRepository(conn).Create(ctx, &models.Report{CommentID: comment.ID, ReporterID: liker.ID, Reason: models.ReportReasonSpam, Status: models.ReportStatusPending}))

	comments := NewCommentRepository(conn)
	require.NoError(t, comments.Delete(ctx, comment.ID))

	for _, model := range []interface{}{&models.Reply{}, &models.CommentLike{}, &models.Report{}} {
		var orphans int64
		require.NoError(t, conn.Model(model).Where("comment_id = ?", comment.ID).Count(&orphans).Error)
		assert.Zero(t, orphans)
	}

	err := comments.Delete(ctx, comment.ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestCommentVisibility(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	author := seedUser(t, conn, models.RoleUser)
	reader := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, author)
	pending := seedComment(t, conn, post, author, false)
	seedComment(t, conn, post, reader, true)

	comments := NewCommentRepository(conn)

	public, err := comments.ListByPost(ctx, post.ID, Visibility{})
	require.NoError(t, err)
	assert.Len(t, public, 1)

	asReader, err := comments.ListByPost(ctx, post.ID, Visibility{ViewerID: reader.ID})
	require.NoError(t, err)
	assert.Len(t, asReader, 1)

	asAuthor, err := comments.ListByPost(ctx, post.ID, Visibility{ViewerID: author.ID})
	require.NoError(t, err)
	assert.Len(t, asAuthor, 2)

	all, err := comments.ListByPost(ctx, post.ID, Visibility{All: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	changed, err := comments.Approve(ctx, pending.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = comments.Approve(ctx, pending.ID)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestLikeToggleTwiceLeavesNoRow(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	author := seedUser(t, conn, models.RoleUser)
	post := seedPost(t, conn, author)
	comment := seedComment(t, conn, post, author, true)
	likes := NewLikeRepository(conn)

	require.NoError(t, likes.Toggle(ctx, comment.ID, author.ID))
	liked, err := likes.Exists(ctx, comment.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	require.NoError(t, likes.Toggle(ctx, comment.ID, author.ID))
	count, err := likes.CountByComment(ctx, comment.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// the unique index rejects a second row for the same pair
	require.NoError(t, conn.Create(&models.CommentLike{CommentID: comment.ID, UserID: author.ID}).Error)
	err = dbErr(conn.Create(&models.CommentLike{CommentID: comment.ID, UserID: author.ID}).Error)
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}

func TestReportResolveOnlyOnce(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	author := seedUser(t, conn, models.RoleUser)
	admin := seedUser(t, conn, models.RoleAdmin)
	post := seedPost(t, conn, author)
	comment := seedComment(t, conn, post, author, true)
	reports := NewReportRepository(conn)

	report := &models.Report{CommentID: comment.ID, ReporterID: author.ID, Reason: models.ReportReasonSpam, Status: models.ReportStatusPending}
	require.NoError(t, reports.Create(ctx, report))

	first := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, reports.Resolve(ctx, report.ID, models.ReportStatusDismissed, admin.ID, first))

	err := reports.Resolve(ctx, report.ID, models.ReportStatusResolved, author.ID, first.Add(time.Hour))
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidTransition))

	got, err := reports.GetByID(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusDismissed, got.Status)
	require.NotNil(t, got.ResolvedBy)
	assert.Equal(t, admin.ID, *got.ResolvedBy)
	assert.True(t, got.ResolvedAt.Equal(first))

	err = reports.Resolve(ctx, 0, models.ReportStatusResolved, admin.ID, first)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))
}

func TestNotificationBatchAndReadState(t *testing.T) {
	conn := setupDB(t)
	ctx := context.Background()

	users := []*models.User{
		seedUser(t, conn, models.RoleUser),
		seedUser(t, conn, models.RoleUser),
		seedUser(t, conn, models.RoleUser),
	}
	var batch []models.Notification
	for _, u := range users {
		batch = append(batch, models.Notification{UserID: u.ID, Type: models.NotificationTypeSystem, Title: "hi"})
	}

	notifications := NewNotificationRepository(conn)
	require.NoError(t, notifications.CreateBatch(ctx, batch))

	for _, u := range users {
		unread, err := notifications.UnreadCount(ctx, u.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, unread)
	}

	target := users[0].ID
	list, total, err := notifications.ListByUser(ctx, target, true, NewPage(1, 10))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.EqualValues(t, 1, total)

	require.NoError(t, notifications.MarkRead(ctx, list[0].ID, target))
	require.NoError(t, notifications.MarkRead(ctx, list[0].ID, target))

	err = notifications.MarkRead(ctx, list[0].ID, users[1].ID)
	assert.True(t, apperr.HasCode(err, apperr.CodeNotFound))

	n, err := notifications.MarkAllRead(ctx, users[1].ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	unread, err := notifications.UnreadCount(ctx, users[1].ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Limit: DefaultPageSize, Offset: 0}, NewPage(0, 0))
	assert.Equal(t, Page{Limit: 10, Offset: 20}, NewPage(3, 10))
	assert.Equal(t, Page{Limit: MaxPageSize, Offset: 0}, NewPage(1, 1000))
}
