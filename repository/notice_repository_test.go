// repository/notice_repository_test.go
package repository

import (
	"academy-api/db"
	"academy-api/model"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoticeRepository_Neighbours(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	notice := &model.Notice{ID: 12, CreatedAt: created}

	t.Run("previous is the next newer row, same timestamp by higher id", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()
		repo := NewNoticeRepository(conn, db.MySQL)

		dbMock.ExpectQuery(regexp.QuoteMeta("FROM notices n WHERE (n.created_at > ? OR (n.created_at = ? AND n.id > ?)) ORDER BY n.created_at ASC, n.id ASC LIMIT 1")).
			WithArgs(created, created, int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at"}).AddRow(13, "같은 시각 공지", created))

		nav, err := repo.Previous(context.Background(), notice, false, created)

		require.NoError(t, err)
		assert.Equal(t, int64(13), nav.ID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("next is the next older row, same timestamp by lower id", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()
		repo := NewNoticeRepository(conn, db.MySQL)

		dbMock.ExpectQuery(regexp.QuoteMeta("FROM notices n WHERE (n.created_at < ? OR (n.created_at = ? AND n.id < ?)) ORDER BY n.created_at DESC, n.id DESC LIMIT 1")).
			WithArgs(created, created, int64(12)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at"}).AddRow(11, "같은 시각 공지", created))

		nav, err := repo.Next(context.Background(), notice, false, created)

		require.NoError(t, err)
		assert.Equal(t, int64(11), nav.ID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("no neighbour", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()
		repo := NewNoticeRepository(conn, db.MySQL)

		dbMock.ExpectQuery(regexp.QuoteMeta("FROM notices n WHERE")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "created_at"}))

		nav, err := repo.Next(context.Background(), notice, false, created)

		require.NoError(t, err)
		assert.Nil(t, nav)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
