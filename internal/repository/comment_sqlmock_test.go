package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"porchlight/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

var bumpReplyCountSQL = regexp.QuoteMeta(
	`UPDATE "comments" SET "reply_count"=CASE WHEN reply_count + $1 < 0 THEN 0 ELSE reply_count + $2 END WHERE id = $3`,
)

// Creating a reply must wrap the parent bump and the insert in one
// transaction, with the bump issued as a single atomic UPDATE rather than a
// read-modify-write in application code.
func TestCommentRepository_CreateReplyIsOneTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(bumpReplyCountSQL).
		WithArgs(1, 1, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	repo := NewCommentRepository(db)
	parentID := uint(42)
	reply := &models.Comment{UserID: "u", UserName: "U", Content: "reply", ParentID: &parentID}
	require.NoError(t, repo.Create(context.Background(), reply))
	require.NoError(t, mock.ExpectationsWereMet())
}

// A failed insert rolls the bump back with it.
func TestCommentRepository_CreateReplyRollsBackBumpOnInsertError(t *testing.T) {
	db, mock := newMockDB(t)

	insertErr := errors.New("duplicate key value violates unique constraint")

	mock.ExpectBegin()
	mock.ExpectExec(bumpReplyCountSQL).
		WithArgs(1, 1, 42).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "comments"`).
		WillReturnError(insertErr)
	mock.ExpectRollback()

	repo := NewCommentRepository(db)
	parentID := uint(42)
	reply := &models.Comment{UserID: "u", UserName: "U", Content: "reply", ParentID: &parentID}
	require.ErrorIs(t, repo.Create(context.Background(), reply), insertErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A top-level comment needs no counter work and therefore no transaction.
func TestCommentRepository_CreateTopLevelIsPlainInsert(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`INSERT INTO "comments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	repo := NewCommentRepository(db)
	comment := &models.Comment{UserID: "u", UserName: "U", Content: "hello"}
	require.NoError(t, repo.Create(context.Background(), comment))
	require.NoError(t, mock.ExpectationsWereMet())
}
