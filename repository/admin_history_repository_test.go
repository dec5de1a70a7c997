// repository/admin_history_repository_test.go
package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/model"
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHistoryRepository_CreateAction(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewAdminHistoryRepository(conn, db.MySQL)

	entry := &model.AdminActionLog{
		AdminID:       4,
		AdminUsername: "staff01",
		ActionType:    model.ActionCreate,
		TargetType:    model.TargetNotice,
		ActionDetail:  json.RawMessage(`{"route":"POST /api/admin/notices"}`),
		HTTPMethod:    "POST",
		RequestPath:   "/api/admin/notices",
		StatusCode:    201,
		IPAddress:     "10.0.0.9",
		UserAgent:     "curl/8.0",
	}
	dbMock.ExpectExec(regexp.QuoteMeta("INSERT INTO admin_action_logs (admin_id,admin_username,action_type,target_type,target_id,action_detail,http_method,request_path,status_code,ip_address,user_agent,created_at)")).
		WithArgs(int64(4), "staff01", "CREATE", "NOTICE", nil, `{"route":"POST /api/admin/notices"}`,
			"POST", "/api/admin/notices", int64(201), "10.0.0.9", "curl/8.0", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(31, 1))

	require.NoError(t, repo.CreateAction(context.Background(), entry))
	assert.Equal(t, int64(31), entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAdminHistoryRepository_SearchLogins(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewAdminHistoryRepository(conn, db.MySQL)

	failed := false
	loggedIn := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	dbMock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM admin_login_histories WHERE (admin_username LIKE ? AND success = ?)")).
		WithArgs("%staff%", false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	dbMock.ExpectQuery(regexp.QuoteMeta("FROM admin_login_histories WHERE (admin_username LIKE ? AND success = ?) ORDER BY logged_in_at DESC, id DESC")).
		WithArgs("%staff%", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "admin_id", "admin_username", "success", "fail_reason", "ip_address", "user_agent", "logged_in_at"}).
			AddRow(9, 4, "staff01", false, "INVALID_PASSWORD", "10.0.0.9", nil, loggedIn))

	histories, total, err := repo.SearchLogins(context.Background(),
		model.AdminLoginSearch{AdminUsername: "staff", Success: &failed}, common.NewPageRequest(0, 10))

	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, histories, 1)
	assert.Equal(t, int64(4), *histories[0].AdminID)
	assert.Equal(t, model.LoginFailInvalidPassword, *histories[0].FailReason)
	assert.Empty(t, histories[0].UserAgent)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestAdminHistoryRepository_GetActionDropsBrokenDetail(t *testing.T) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()
	repo := NewAdminHistoryRepository(conn, db.MySQL)

	dbMock.ExpectQuery(regexp.QuoteMeta("FROM admin_action_logs WHERE id = ?")).
		WithArgs(int64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "admin_id", "admin_username", "action_type", "target_type", "target_id",
			"action_detail", "http_method", "request_path", "status_code", "ip_address", "user_agent", "created_at"}).
			AddRow(31, 4, "staff01", "DELETE", "FAQ", 7, "{not json", "DELETE", "/api/admin/faq/7", 200, "10.0.0.9", "curl/8.0", time.Now()))

	l, err := repo.GetAction(context.Background(), 31)

	require.NoError(t, err)
	assert.Equal(t, model.ActionDelete, l.ActionType)
	assert.Equal(t, int64(7), *l.TargetID)
	assert.Nil(t, l.ActionDetail)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
