package handler

import (
	"academy-api/common"
	"academy-api/model"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
)

// ActionRecorder stores completed admin mutations.
type ActionRecorder interface {
	RecordAction(ctx context.Context, entry model.AdminActionLog)
}

// Audit records admin mutations that finished below 400. It must run after
// AuthMiddleware so the actor is known.
type Audit struct {
	recorder ActionRecorder
}

func NewAudit(recorder ActionRecorder) *Audit {
	return &Audit{recorder: recorder}
}

// targetID reads the path id the route was matched with, if any.
func targetID(r *http.Request) *int64 {
	for _, name := range []string{"id", "groupId"} {
		if v := r.PathValue(name); v != "" {
			if id, err := strconv.ParseInt(v, 10, 64); err == nil {
				return &id
			}
		}
	}
	return nil
}

func (a *Audit) Wrap(action model.AdminActionType, target model.AdminTargetType, next http.Handler) http.Handler {
	if a == nil || a.recorder == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status >= http.StatusBadRequest {
			return
		}

		actorID, appErr := currentMemberID(r)
		if appErr != nil {
			return
		}
		username, _ := r.Context().Value(UsernameKey).(string)
		detail, _ := json.Marshal(map[string]string{
			"route": r.Pattern,
			"query": r.URL.RawQuery,
		})

		a.recorder.RecordAction(r.Context(), model.AdminActionLog{
			AdminID:       actorID,
			AdminUsername: username,
			ActionType:    action,
			TargetType:    target,
			TargetID:      targetID(r),
			ActionDetail:  detail,
			HTTPMethod:    r.Method,
			RequestPath:   r.URL.Path,
			StatusCode:    rec.status,
			IPAddress:     common.ClientIP(r),
			UserAgent:     r.UserAgent(),
		})
	})
}
