// repository/apply_repository_test.go
package repository

import (
	"academy-api/db"
	"academy-api/model"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyRepository_ReplaceSubjectsInTx(t *testing.T) {
	ctx := context.Background()
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewApplyRepository(conn, db.MySQL)

	dbMock.ExpectBegin()
	dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM apply_application_subjects WHERE application_id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	dbMock.ExpectExec(regexp.QuoteMeta("INSERT INTO apply_application_subjects (application_id,subject_code) VALUES (?,?),(?,?)")).
		WithArgs(int64(5), "KOR", int64(5), "MATH").
		WillReturnResult(sqlmock.NewResult(0, 2))
	dbMock.ExpectCommit()

	tx, err := conn.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceSubjects(ctx, tx, 5, []model.SubjectCode{model.SubjectKorean, model.SubjectMath}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestApplyRepository_ReplaceSubjectsEmpty(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewApplyRepository(conn, db.SQLite)

	dbMock.ExpectExec(regexp.QuoteMeta("DELETE FROM apply_application_subjects")).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.ReplaceSubjects(context.Background(), nil, 5, nil))
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestApplyRepository_CountByStatus(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewApplyRepository(conn, db.MySQL)

	dbMock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM apply_applications GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("REGISTERED", 4).AddRow("COMPLETED", 1))

	counts, err := repo.CountByStatus(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[model.ApplicationStatus]int64{model.ApplyRegistered: 4, model.ApplyCompleted: 1}, counts)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
