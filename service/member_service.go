package service

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/repository"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MemberService handles member administration.
type MemberService struct {
	memberRepo repository.IMemberRepository
	tokenRepo  repository.ITokenRepository
}

func NewMemberService(memberRepo repository.IMemberRepository, tokenRepo repository.ITokenRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo, tokenRepo: tokenRepo}
}

func (s *MemberService) List(ctx context.Context, search model.MemberSearch, page common.PageRequest) ([]model.Member, int64, error) {
	return s.memberRepo.Search(ctx, search, page)
}

func (s *MemberService) Get(ctx context.Context, id int64) (*model.Member, error) {
	member, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrMemberNotFound
		}
		return nil, err
	}
	return member, nil
}

// UpdateStatus stamps suspended_at when suspending and clears it otherwise.
// Suspended and deleted members lose their refresh tokens.
// checkManageable refuses changes to admin accounts unless the actor is a SUPER_ADMIN.
func checkManageable(member *model.Member, actorID int64, actorRole model.MemberRole, action string) error {
	if member.Role.IsAdmin() && actorRole != model.RoleSuperAdmin {
		logger.Log.WithFields(logrus.Fields{
			"member_id": member.ID,
			"actor_id":  actorID,
			"action":    action,
		}).Warn("Admin account change refused: super admin required")
		return common.ErrAccessDenied
	}
	return nil
}

func (s *MemberService) UpdateStatus(ctx context.Context, id int64, req model.MemberStatusRequest, actorID int64, actorRole model.MemberRole) (*model.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkManageable(member, actorID, actorRole, "status"); err != nil {
		return nil, err
	}
	if member.Role == model.RoleSuperAdmin && req.Status == model.StatusDeleted {
		logger.Log.WithField("member_id", id).Warn("Refused to delete a super admin")
		return nil, common.ErrAccessDenied
	}

	member.Status = req.Status
	if req.Status == model.StatusSuspended {
		now := common.Now()
		member.SuspendedAt = &now
	} else {
		member.SuspendedAt = nil
	}
	if req.Memo != nil {
		member.Memo = req.Memo
	}
	member.UpdatedBy = &actorID

	if err := s.memberRepo.UpdateStatus(ctx, member); err != nil {
		return nil, err
	}
	if req.Status != model.StatusActive {
		if err := s.tokenRepo.RevokeAllByMemberID(ctx, id); err != nil {
			return nil, err
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"member_id": id,
		"status":    req.Status,
		"actor_id":  actorID,
	}).Info("Member status changed")
	return member, nil
}

func (s *MemberService) SetLocked(ctx context.Context, id int64, locked bool, actorID int64, actorRole model.MemberRole) (*model.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkManageable(member, actorID, actorRole, "lock"); err != nil {
		return nil, err
	}
	if err := s.memberRepo.UpdateLocked(ctx, id, locked, &actorID); err != nil {
		return nil, err
	}
	if locked {
		if err := s.tokenRepo.RevokeAllByMemberID(ctx, id); err != nil {
			return nil, err
		}
	}
	member.Locked = locked
	return member, nil
}

// ChangeRole lets only a SUPER_ADMIN grant or revoke admin roles.
func (s *MemberService) ChangeRole(ctx context.Context, id int64, role model.MemberRole, actorID int64, actorRole model.MemberRole) (*model.Member, error) {
	if !role.IsValid() {
		return nil, common.ErrInvalidInput
	}
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if (role.IsAdmin() || member.Role.IsAdmin()) && actorRole != model.RoleSuperAdmin {
		logger.Log.WithFields(logrus.Fields{
			"member_id": id,
			"actor_id":  actorID,
		}).Warn("Role change refused: super admin required")
		return nil, common.ErrAccessDenied
	}

	if err := s.memberRepo.UpdateRole(ctx, id, role, &actorID); err != nil {
		return nil, err
	}
	member.Role = role
	return member, nil
}

func (s *MemberService) ResetPassword(ctx context.Context, id int64, newPassword string, actorID int64, actorRole model.MemberRole) error {
	member, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := checkManageable(member, actorID, actorRole, "reset_password"); err != nil {
		return err
	}
	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("could not hash password: %w", err)
	}
	if err := s.memberRepo.UpdatePassword(ctx, id, hash, &actorID); err != nil {
		return err
	}
	return s.tokenRepo.RevokeAllByMemberID(ctx, id)
}

// authorNames resolves member names for ids, defaulting to "Unknown".
func authorNames(ctx context.Context, repo repository.IMemberRepository, ids []int64) map[int64]string {
	names, err := repo.NamesByIDs(ctx, ids)
	if err != nil {
		logger.Log.WithError(err).Warn("Could not resolve author names")
		return map[int64]string{}
	}
	return names
}

func nameOf(names map[int64]string, id *int64) string {
	if id != nil {
		if n, ok := names[*id]; ok {
			return n
		}
	}
	return "Unknown"
}

func collectIDs(ptrs ...*int64) []int64 {
	seen := map[int64]bool{}
	ids := make([]int64, 0, len(ptrs))
	for _, p := range ptrs {
		if p != nil && !seen[*p] {
			seen[*p] = true
			ids = append(ids, *p)
		}
	}
	return ids
}
