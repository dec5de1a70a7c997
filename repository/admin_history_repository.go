package repository

import (
	"academy-api/common"
	"academy-api/db"
	"academy-api/logger"
	"academy-api/model"
	"context"
	"database/sql"
	"encoding/json"

	sq "github.com/Masterminds/squirrel"
	"github.com/sirupsen/logrus"
)

type IAdminHistoryRepository interface {
	CreateLogin(ctx context.Context, h *model.AdminLoginHistory) error
	SearchLogins(ctx context.Context, search model.AdminLoginSearch, page common.PageRequest) ([]model.AdminLoginHistory, int64, error)
	CreateAction(ctx context.Context, l *model.AdminActionLog) error
	SearchActions(ctx context.Context, search model.AdminActionSearch, page common.PageRequest) ([]model.AdminActionLog, int64, error)
	GetAction(ctx context.Context, id int64) (*model.AdminActionLog, error)
}

type AdminHistoryRepository struct {
	baseRepository
}

func NewAdminHistoryRepository(conn *sql.DB, dialect db.Dialect) *AdminHistoryRepository {
	return &AdminHistoryRepository{baseRepository: newBase(conn, dialect)}
}

func (r *AdminHistoryRepository) CreateLogin(ctx context.Context, h *model.AdminLoginHistory) error {
	if h.LoggedInAt.IsZero() {
		h.LoggedInAt = common.Now()
	}
	var reason *string
	if h.FailReason != nil {
		s := string(*h.FailReason)
		reason = &s
	}
	id, err := r.insert(ctx, r.DB, r.sb().Insert("admin_login_histories").
		Columns("admin_id", "admin_username", "success", "fail_reason", "ip_address", "user_agent", "logged_in_at").
		Values(nullable(h.AdminID), h.AdminUsername, h.Success, nullable(reason), h.IPAddress, h.UserAgent, h.LoggedInAt))
	if err != nil {
		logger.Log.WithError(err).WithField("admin_username", h.AdminUsername).Error("Failed to insert admin login history")
		return err
	}
	h.ID = id
	return nil
}

func (r *AdminHistoryRepository) SearchLogins(ctx context.Context, search model.AdminLoginSearch, page common.PageRequest) ([]model.AdminLoginHistory, int64, error) {
	where := sq.And{}
	if search.AdminUsername != "" {
		where = append(where, r.like("admin_username", search.AdminUsername))
	}
	if search.Success != nil {
		where = append(where, sq.Eq{"success": *search.Success})
	}
	if search.From != nil {
		where = append(where, sq.GtOrEq{"logged_in_at": *search.From})
	}
	if search.To != nil {
		where = append(where, sq.LtOrEq{"logged_in_at": *search.To})
	}

	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("admin_login_histories").Where(where))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count admin login histories")
		return nil, 0, err
	}

	rows, err := r.query(ctx, r.sb().
		Select("id", "admin_id", "admin_username", "success", "fail_reason", "ip_address", "user_agent", "logged_in_at").
		From("admin_login_histories").Where(where).
		OrderBy("logged_in_at DESC", "id DESC").
		Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute search admin login histories query")
		return nil, 0, err
	}
	defer rows.Close()

	histories := make([]model.AdminLoginHistory, 0)
	for rows.Next() {
		var (
			h             model.AdminLoginHistory
			adminID       sql.NullInt64
			reason        sql.NullString
			ip, userAgent sql.NullString
		)
		if err := rows.Scan(&h.ID, &adminID, &h.AdminUsername, &h.Success, &reason, &ip, &userAgent, &h.LoggedInAt); err != nil {
			return nil, 0, err
		}
		h.AdminID = int64Ptr(adminID)
		if reason.Valid {
			fr := model.AdminLoginFailReason(reason.String)
			h.FailReason = &fr
		}
		h.IPAddress, h.UserAgent = ip.String, userAgent.String
		histories = append(histories, h)
	}
	return histories, total, rows.Err()
}

func (r *AdminHistoryRepository) CreateAction(ctx context.Context, l *model.AdminActionLog) error {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = common.Now()
	}
	var detail interface{}
	if len(l.ActionDetail) > 0 {
		detail = string(l.ActionDetail)
	}
	id, err := r.insert(ctx, r.DB, r.sb().Insert("admin_action_logs").
		Columns("admin_id", "admin_username", "action_type", "target_type", "target_id", "action_detail",
			"http_method", "request_path", "status_code", "ip_address", "user_agent", "created_at").
		Values(l.AdminID, l.AdminUsername, string(l.ActionType), string(l.TargetType), nullable(l.TargetID), detail,
			l.HTTPMethod, l.RequestPath, l.StatusCode, l.IPAddress, l.UserAgent, l.CreatedAt))
	if err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"admin_id":    l.AdminID,
			"action_type": l.ActionType,
			"target_type": l.TargetType,
		}).Error("Failed to insert admin action log")
		return err
	}
	l.ID = id
	return nil
}

func (r *AdminHistoryRepository) selectActions() sq.SelectBuilder {
	return r.sb().Select("id", "admin_id", "admin_username", "action_type", "target_type", "target_id",
		"action_detail", "http_method", "request_path", "status_code", "ip_address", "user_agent", "created_at").
		From("admin_action_logs")
}

func scanAction(row rowScanner) (*model.AdminActionLog, error) {
	var (
		l                      model.AdminActionLog
		actionType, targetType string
		targetID               sql.NullInt64
		detail                 sql.NullString
		ip, userAgent          sql.NullString
	)
	if err := row.Scan(&l.ID, &l.AdminID, &l.AdminUsername, &actionType, &targetType, &targetID,
		&detail, &l.HTTPMethod, &l.RequestPath, &l.StatusCode, &ip, &userAgent, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.ActionType = model.AdminActionType(actionType)
	l.TargetType = model.AdminTargetType(targetType)
	l.TargetID = int64Ptr(targetID)
	if detail.Valid && json.Valid([]byte(detail.String)) {
		l.ActionDetail = json.RawMessage(detail.String)
	}
	l.IPAddress, l.UserAgent = ip.String, userAgent.String
	return &l, nil
}

func (r *AdminHistoryRepository) SearchActions(ctx context.Context, search model.AdminActionSearch, page common.PageRequest) ([]model.AdminActionLog, int64, error) {
	where := sq.And{}
	if search.AdminID != nil {
		where = append(where, sq.Eq{"admin_id": *search.AdminID})
	}
	if search.ActionType != nil {
		where = append(where, sq.Eq{"action_type": string(*search.ActionType)})
	}
	if search.TargetType != nil {
		where = append(where, sq.Eq{"target_type": string(*search.TargetType)})
	}
	if search.TargetID != nil {
		where = append(where, sq.Eq{"target_id": *search.TargetID})
	}
	if search.From != nil {
		where = append(where, sq.GtOrEq{"created_at": *search.From})
	}
	if search.To != nil {
		where = append(where, sq.LtOrEq{"created_at": *search.To})
	}

	total, err := r.count(ctx, r.sb().Select("COUNT(*)").From("admin_action_logs").Where(where))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count admin action logs")
		return nil, 0, err
	}

	rows, err := r.query(ctx, r.selectActions().Where(where).
		OrderBy("created_at DESC", "id DESC").
		Limit(page.Limit()).Offset(page.Offset()))
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute search admin action logs query")
		return nil, 0, err
	}
	defer rows.Close()

	logs := make([]model.AdminActionLog, 0)
	for rows.Next() {
		l, err := scanAction(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *l)
	}
	return logs, total, rows.Err()
}

func (r *AdminHistoryRepository) GetAction(ctx context.Context, id int64) (*model.AdminActionLog, error) {
	row, err := r.queryRow(ctx, r.selectActions().Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	l, err := scanAction(row)
	if err != nil && err != sql.ErrNoRows {
		logger.Log.WithError(err).WithField("log_id", id).Error("Failed to execute get admin action log query")
	}
	return l, err
}
