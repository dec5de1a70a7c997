// repository/qna_repository_test.go
package repository

import (
	"academy-api/db"
	"academy-api/model"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQnaRepository_Delete(t *testing.T) {
	t.Run("removes the answer with the question", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()
		repo := NewQnaRepository(conn, db.MySQL)

		dbMock.ExpectBegin()
		dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM qna_answers WHERE question_id = ?")).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM qna_questions WHERE id = ?")).
			WithArgs(int64(6)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectCommit()

		require.NoError(t, repo.Delete(context.Background(), 6))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("rolls back when the question delete fails", func(t *testing.T) {
		conn, dbMock, err := sqlmock.New()
		require.NoError(t, err)
		defer conn.Close()
		repo := NewQnaRepository(conn, db.MySQL)

		dbMock.ExpectBegin()
		dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM qna_answers")).WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM qna_questions")).WillReturnError(errors.New("lock wait timeout"))
		dbMock.ExpectRollback()

		assert.Error(t, repo.Delete(context.Background(), 6))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestQnaRepository_SetAnswered(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewQnaRepository(conn, db.MySQL)
	answeredAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	dbMock.ExpectExec(regexp.QuoteMeta("UPDATE qna_questions SET is_answered = ?, answered_at = ? WHERE id = ?")).
		WithArgs(true, answeredAt, int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectExec(regexp.QuoteMeta("UPDATE qna_questions SET is_answered = ?, answered_at = ? WHERE id = ?")).
		WithArgs(false, nil, int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetAnswered(context.Background(), nil, 6, &answeredAt))
	require.NoError(t, repo.SetAnswered(context.Background(), nil, 6, nil))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestQnaRepository_NextBreaksTiesByID(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewQnaRepository(conn, db.MySQL)
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	dbMock.ExpectQuery(regexp.QuoteMeta("WHERE (created_at < ? OR (created_at = ? AND id < ?)) AND is_published = ? ORDER BY created_at DESC, id DESC LIMIT 1")).
		WithArgs(created, created, int64(8), true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "is_secret", "created_at"}).AddRow(7, "같은 시각 질문", true, created))

	nav, err := repo.Next(context.Background(), &model.QnaQuestion{ID: 8, CreatedAt: created}, true)

	require.NoError(t, err)
	assert.Equal(t, int64(7), nav.ID)
	assert.True(t, nav.IsSecret)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
