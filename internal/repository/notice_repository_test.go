package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/brightwood-school/bwps-api/internal/models"
)

func newNoticeRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func noticeRow(id, slug string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "title", "description", "content", "category", "priority", "publish_date", "expiry_date", "event_date", "is_published", "is_pinned", "is_active", "author", "slug", "views", "created_at", "updated_at"}).
		AddRow(id, "Annual Day", "Celebration details", nil, "EVENT", "HIGH", now, nil, nil, true, false, true, "Principal", slug, 12, now, now)
}

func TestNoticeRepositoryListStitchesAttachments(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()

	repo := NewNoticeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description")).
		WillReturnRows(noticeRow("not-1", "annual-day"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notices")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	attRows := sqlmock.NewRows([]string{"id", "notice_id", "file_name", "file_url", "file_type", "file_size", "created_at"}).
		AddRow("att-1", "not-1", "schedule.pdf", "/uploads/schedule.pdf", "application/pdf", 4096, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, notice_id, file_name")).
		WillReturnRows(attRows)

	notices, total, err := repo.List(context.Background(), models.NoticeFilter{})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, notices, 1)
	require.Len(t, notices[0].Attachments, 1)
	require.Equal(t, "schedule.pdf", notices[0].Attachments[0].FileName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryGetBySlug(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()

	repo := NewNoticeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description")).
		WithArgs("annual-day").
		WillReturnRows(noticeRow("not-1", "annual-day"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, notice_id, file_name")).
		WithArgs("not-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "notice_id", "file_name", "file_url", "file_type", "file_size", "created_at"}))

	notice, err := repo.GetBySlug(context.Background(), "annual-day")
	require.NoError(t, err)
	require.Equal(t, "not-1", notice.ID)
	require.Empty(t, notice.Attachments)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryGetBySlugMissing(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()

	repo := NewNoticeRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, description")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetBySlug(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestNoticeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()

	repo := NewNoticeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notices")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	notice := &models.Notice{
		Title:       "Winter Break",
		Description: "School closed",
		Category:    models.NoticeHoliday,
		Priority:    models.PriorityNormal,
		PublishDate: time.Now(),
		IsPublished: true,
		IsActive:    true,
		Author:      "Admin",
		Slug:        "winter-break",
	}
	require.NoError(t, repo.Create(context.Background(), notice))
	require.NotEmpty(t, notice.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryIncrementViewsMissing(t *testing.T) {
	db, mock, cleanup := newNoticeRepoMock(t)
	defer cleanup()

	repo := NewNoticeRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE notices SET views = views + 1")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.IncrementViews(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
}
