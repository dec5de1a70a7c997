// handler/auth_middleware_test.go
package handler

import (
	"academy-api/model"
	"academy-api/service"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	member := &model.Member{ID: 42, Username: "staff01", MemberName: "김직원", Role: model.RoleAdmin}
	access, err := service.GenerateAccessToken(member)
	require.NoError(t, err)
	refresh, _, err := service.GenerateRefreshToken(member)
	require.NoError(t, err)

	var gotID int64
	var gotRole model.MemberRole
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = currentMemberID(r)
		gotRole = currentRole(r)
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing header", "", http.StatusUnauthorized, "AUTH_REQUIRED"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "AUTH_INVALID_TOKEN"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, "AUTH_INVALID_TOKEN"},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized, "AUTH_INVALID_TOKEN"},
		{"valid token", "Bearer " + access, http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, gotRole = 0, ""
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			AuthMiddleware(next).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantCode == "" {
				assert.Equal(t, int64(42), gotID)
				assert.Equal(t, model.RoleAdmin, gotRole)
				return
			}
			body := decodeEnvelope(t, rr)
			assert.Equal(t, tt.wantCode, body["code"])
			assert.Equal(t, true, body["isNeedLogin"])
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, tc := range []struct {
		role model.MemberRole
		want int
	}{
		{model.RoleUser, http.StatusForbidden},
		{model.RoleAdmin, http.StatusOK},
		{model.RoleSuperAdmin, http.StatusOK},
	} {
		t.Run(string(tc.role), func(t *testing.T) {
			token, err := service.GenerateAccessToken(&model.Member{ID: 1, Username: "member01", Role: tc.role})
			require.NoError(t, err)
			req := httptest.NewRequest(http.MethodGet, "/api/admin/members", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rr := httptest.NewRecorder()

			AuthMiddleware(AdminMiddleware(next)).ServeHTTP(rr, req)

			assert.Equal(t, tc.want, rr.Code)
			if tc.want == http.StatusForbidden {
				assert.Equal(t, true, decodeEnvelope(t, rr)["accessDenied"])
			}
		})
	}
}

func TestCurrentMemberID_WithoutAuth(t *testing.T) {
	_, appErr := currentMemberID(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusUnauthorized, appErr.Status)
}
