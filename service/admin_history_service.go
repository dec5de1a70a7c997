package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
)

// historyWriteTimeout bounds a history insert that outlives its request.
const historyWriteTimeout = 5 * time.Second

type AdminHistoryService struct {
	repo repository.IAdminHistoryRepository
}

func NewAdminHistoryService(repo repository.IAdminHistoryRepository) *AdminHistoryService {
	return &AdminHistoryService{repo: repo}
}

// RecordLogin stores an admin sign-in attempt. Failures are logged and
// never block the sign-in itself.
func (s *AdminHistoryService) RecordLogin(ctx context.Context, entry model.AdminLoginHistory) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := s.repo.CreateLogin(ctx, &entry); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"admin_username": entry.AdminUsername,
			"success":        entry.Success,
		}).Warn("Could not record admin login history")
	}
}

// RecordAction stores a completed admin mutation. Like RecordLogin it only
// logs failures.
func (s *AdminHistoryService) RecordAction(ctx context.Context, entry model.AdminActionLog) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), historyWriteTimeout)
	defer cancel()

	if err := s.repo.CreateAction(ctx, &entry); err != nil {
		logger.Log.WithError(err).WithFields(logrus.Fields{
			"admin_id":    entry.AdminID,
			"action_type": entry.ActionType,
			"target_type": entry.TargetType,
		}).Warn("Could not record admin action")
	}
}

func (s *AdminHistoryService) Logins(ctx context.Context, search model.AdminLoginSearch, page common.PageRequest) ([]model.AdminLoginHistory, int64, error) {
	if search.From != nil && search.To != nil && search.From.After(*search.To) {
		return nil, 0, common.ErrInvalidDateRange
	}
	return s.repo.SearchLogins(ctx, search, page)
}

func (s *AdminHistoryService) Actions(ctx context.Context, search model.AdminActionSearch, page common.PageRequest) ([]model.AdminActionLog, int64, error) {
	if search.From != nil && search.To != nil && search.From.After(*search.To) {
		return nil, 0, common.ErrInvalidDateRange
	}
	if search.ActionType != nil && !search.ActionType.IsValid() {
		return nil, 0, common.ErrInvalidInput
	}
	return s.repo.SearchActions(ctx, search, page)
}

func (s *AdminHistoryService) Action(ctx context.Context, id int64) (*model.AdminActionLog, error) {
	l, err := s.repo.GetAction(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrActionLogNotFound
		}
		return nil, err
	}
	return l, nil
}
