// repository/category_repository_test.go
package repository

import (
	"academy-api/db"
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryRepository_ExistsBySlug(t *testing.T) {
	ctx := context.Background()
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewCategoryRepository(conn, db.MySQL)

	dbMock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM categories WHERE category_group_id = ? AND slug = ?")).
		WithArgs(int64(2), "events").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	dbMock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM categories WHERE category_group_id = ? AND slug = ? AND id <> ?")).
		WithArgs(int64(2), "events", int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsBySlug(ctx, 2, "events", 0)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsBySlug(ctx, 2, "events", 7)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestCategoryRepository_CountReferences(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewCategoryRepository(conn, db.SQLite)

	dbMock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notices WHERE category_id = ?")).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	dbMock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM faqs WHERE category_id = ?")).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	n, err := repo.CountReferences(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
