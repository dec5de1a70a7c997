package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"context"
	"errors"
	"net/http"
	"strings"
)

type contextKey string

const (
	MemberIDKey   contextKey = "memberID"
	MemberRoleKey contextKey = "memberRole"
	UsernameKey   contextKey = "username"
)

// AuthMiddleware requires a valid bearer access token and stores the member
// id, role and username in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			common.FromCode(common.ErrAuthRequired, nil).Send(w)
			return
		}

		headerParts := strings.SplitN(authHeader, " ", 2)
		if len(headerParts) != 2 || strings.ToLower(headerParts[0]) != "bearer" || headerParts[1] == "" {
			common.FromCode(common.ErrInvalidToken, nil).Send(w)
			return
		}

		claims, err := service.ParseAccessToken(strings.TrimSpace(headerParts[1]))
		if err != nil {
			if errors.Is(err, common.ErrTokenExpired) {
				common.FromCode(common.ErrTokenExpired, nil).Send(w)
				return
			}
			common.FromCode(common.ErrInvalidToken, nil).Send(w)
			return
		}
		memberID, err := service.MemberIDFromClaims(claims)
		if err != nil {
			common.FromCode(common.ErrInvalidToken, nil).Send(w)
			return
		}

		ctx := context.WithValue(r.Context(), MemberIDKey, memberID)
		ctx = context.WithValue(ctx, MemberRoleKey, claims.Role)
		ctx = context.WithValue(ctx, UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminMiddleware admits ADMIN and SUPER_ADMIN members. It must run after
// AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(MemberRoleKey).(model.MemberRole)
		if !ok || !role.IsAdmin() {
			common.FromCode(common.ErrAccessDenied, nil).Send(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentMemberID(r *http.Request) (int64, *common.AppError) {
	id, ok := r.Context().Value(MemberIDKey).(int64)
	if !ok {
		return 0, common.FromCode(common.ErrAuthRequired, nil)
	}
	return id, nil
}

func currentRole(r *http.Request) model.MemberRole {
	role, _ := r.Context().Value(MemberRoleKey).(model.MemberRole)
	return role
}
