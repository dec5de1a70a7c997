// service/member_service_test.go
package service

import (
	"academy-api/common"
	"academy-api/model"
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestMemberService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	actorID := int64(1)

	t.Run("suspending stamps the time and revokes tokens", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		tokenRepo := new(MockTokenRepository)
		memberService := NewMemberService(memberRepo, tokenRepo)

		memberRepo.On("GetByID", ctx, int64(5)).Return(&model.Member{ID: 5, Status: model.StatusActive}, nil).Once()
		memberRepo.On("UpdateStatus", ctx, mock.MatchedBy(func(m *model.Member) bool {
			return m.Status == model.StatusSuspended && m.SuspendedAt != nil && *m.UpdatedBy == actorID
		})).Return(nil).Once()
		tokenRepo.On("RevokeAllByMemberID", ctx, int64(5)).Return(nil).Once()

		memo := "payment overdue"
		member, err := memberService.UpdateStatus(ctx, 5, model.MemberStatusRequest{Status: model.StatusSuspended, Memo: &memo}, actorID, model.RoleAdmin)

		assert.NoError(t, err)
		assert.Equal(t, &memo, member.Memo)
		memberRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})

	t.Run("reactivating clears the suspension", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		tokenRepo := new(MockTokenRepository)
		memberService := NewMemberService(memberRepo, tokenRepo)

		suspendedAt := common.Now()
		memberRepo.On("GetByID", ctx, int64(6)).Return(&model.Member{ID: 6, Status: model.StatusSuspended, SuspendedAt: &suspendedAt}, nil).Once()
		memberRepo.On("UpdateStatus", ctx, mock.MatchedBy(func(m *model.Member) bool {
			return m.Status == model.StatusActive && m.SuspendedAt == nil
		})).Return(nil).Once()

		_, err := memberService.UpdateStatus(ctx, 6, model.MemberStatusRequest{Status: model.StatusActive}, actorID, model.RoleAdmin)

		assert.NoError(t, err)
		tokenRepo.AssertNotCalled(t, "RevokeAllByMemberID", mock.Anything, mock.Anything)
	})

	t.Run("unknown member", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		memberService := NewMemberService(memberRepo, new(MockTokenRepository))
		memberRepo.On("GetByID", ctx, int64(404)).Return(nil, sql.ErrNoRows).Once()

		_, err := memberService.UpdateStatus(ctx, 404, model.MemberStatusRequest{Status: model.StatusDeleted}, actorID, model.RoleAdmin)

		assert.ErrorIs(t, err, common.ErrMemberNotFound)
	})

	t.Run("admin cannot suspend another admin", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		memberService := NewMemberService(memberRepo, new(MockTokenRepository))
		memberRepo.On("GetByID", ctx, int64(7)).Return(&model.Member{ID: 7, Role: model.RoleAdmin}, nil).Once()

		_, err := memberService.UpdateStatus(ctx, 7, model.MemberStatusRequest{Status: model.StatusSuspended}, actorID, model.RoleAdmin)

		assert.ErrorIs(t, err, common.ErrAccessDenied)
		memberRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("super admin suspends an admin", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		tokenRepo := new(MockTokenRepository)
		memberService := NewMemberService(memberRepo, tokenRepo)
		memberRepo.On("GetByID", ctx, int64(7)).Return(&model.Member{ID: 7, Role: model.RoleAdmin}, nil).Once()
		memberRepo.On("UpdateStatus", ctx, mock.Anything).Return(nil).Once()
		tokenRepo.On("RevokeAllByMemberID", ctx, int64(7)).Return(nil).Once()

		_, err := memberService.UpdateStatus(ctx, 7, model.MemberStatusRequest{Status: model.StatusSuspended}, actorID, model.RoleSuperAdmin)

		assert.NoError(t, err)
		memberRepo.AssertExpectations(t)
	})

	t.Run("super admin is never deleted", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		memberService := NewMemberService(memberRepo, new(MockTokenRepository))
		memberRepo.On("GetByID", ctx, int64(2)).Return(&model.Member{ID: 2, Role: model.RoleSuperAdmin}, nil).Once()

		_, err := memberService.UpdateStatus(ctx, 2, model.MemberStatusRequest{Status: model.StatusDeleted}, actorID, model.RoleSuperAdmin)

		assert.ErrorIs(t, err, common.ErrAccessDenied)
		memberRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})
}

func TestMemberService_SetLocked(t *testing.T) {
	ctx := context.Background()
	memberRepo := new(MockMemberRepository)
	tokenRepo := new(MockTokenRepository)
	memberService := NewMemberService(memberRepo, tokenRepo)
	actorID := int64(1)

	memberRepo.On("GetByID", ctx, int64(3)).Return(&model.Member{ID: 3}, nil).Once()
	memberRepo.On("UpdateLocked", ctx, int64(3), true, &actorID).Return(nil).Once()
	tokenRepo.On("RevokeAllByMemberID", ctx, int64(3)).Return(nil).Once()

	member, err := memberService.SetLocked(ctx, 3, true, actorID, model.RoleAdmin)

	assert.NoError(t, err)
	assert.True(t, member.Locked)
	tokenRepo.AssertExpectations(t)
}

func TestMemberService_SetLocked_AdminTargetNeedsSuperAdmin(t *testing.T) {
	ctx := context.Background()
	memberRepo := new(MockMemberRepository)
	memberService := NewMemberService(memberRepo, new(MockTokenRepository))
	memberRepo.On("GetByID", ctx, int64(4)).Return(&model.Member{ID: 4, Role: model.RoleSuperAdmin}, nil).Once()

	_, err := memberService.SetLocked(ctx, 4, true, 1, model.RoleAdmin)

	assert.ErrorIs(t, err, common.ErrAccessDenied)
	memberRepo.AssertNotCalled(t, "UpdateLocked", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMemberService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	actorID := int64(1)

	t.Run("admin cannot reset a super admin", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		memberService := NewMemberService(memberRepo, new(MockTokenRepository))
		memberRepo.On("GetByID", ctx, int64(2)).Return(&model.Member{ID: 2, Role: model.RoleSuperAdmin}, nil).Once()

		err := memberService.ResetPassword(ctx, 2, "newpassword1", actorID, model.RoleAdmin)

		assert.ErrorIs(t, err, common.ErrAccessDenied)
		memberRepo.AssertNotCalled(t, "UpdatePassword", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("admin resets a user and revokes tokens", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		tokenRepo := new(MockTokenRepository)
		memberService := NewMemberService(memberRepo, tokenRepo)
		memberRepo.On("GetByID", ctx, int64(8)).Return(&model.Member{ID: 8, Role: model.RoleUser}, nil).Once()
		memberRepo.On("UpdatePassword", ctx, int64(8), mock.MatchedBy(func(hash string) bool {
			return CheckPasswordHash("newpassword1", hash)
		}), &actorID).Return(nil).Once()
		tokenRepo.On("RevokeAllByMemberID", ctx, int64(8)).Return(nil).Once()

		err := memberService.ResetPassword(ctx, 8, "newpassword1", actorID, model.RoleAdmin)

		assert.NoError(t, err)
		memberRepo.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
	})
}

func TestMemberService_ChangeRole(t *testing.T) {
	ctx := context.Background()
	actorID := int64(1)

	t.Run("admin cannot grant admin", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		memberService := NewMemberService(memberRepo, new(MockTokenRepository))
		memberRepo.On("GetByID", ctx, int64(9)).Return(&model.Member{ID: 9, Role: model.RoleUser}, nil).Once()

		_, err := memberService.ChangeRole(ctx, 9, model.RoleAdmin, actorID, model.RoleAdmin)

		assert.ErrorIs(t, err, common.ErrAccessDenied)
		memberRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("super admin grants admin", func(t *testing.T) {
		memberRepo := new(MockMemberRepository)
		memberService := NewMemberService(memberRepo, new(MockTokenRepository))
		memberRepo.On("GetByID", ctx, int64(9)).Return(&model.Member{ID: 9, Role: model.RoleUser}, nil).Once()
		memberRepo.On("UpdateRole", ctx, int64(9), model.RoleAdmin, &actorID).Return(nil).Once()

		member, err := memberService.ChangeRole(ctx, 9, model.RoleAdmin, actorID, model.RoleSuperAdmin)

		assert.NoError(t, err)
		assert.Equal(t, model.RoleAdmin, member.Role)
	})

	t.Run("invalid role", func(t *testing.T) {
		memberService := NewMemberService(new(MockMemberRepository), new(MockTokenRepository))

		_, err := memberService.ChangeRole(ctx, 9, model.MemberRole("ROOT"), actorID, model.RoleSuperAdmin)

		assert.ErrorIs(t, err, common.ErrInvalidInput)
	})
}

func TestCollectIDsAndNameOf(t *testing.T) {
	a, b := int64(1), int64(2)
	dup := int64(1)

	ids := collectIDs(&a, nil, &b, &dup)
	assert.Equal(t, []int64{1, 2}, ids)

	names := map[int64]string{1: "관리자"}
	assert.Equal(t, "관리자", nameOf(names, &a))
	assert.Equal(t, "Unknown", nameOf(names, &b))
	assert.Equal(t, "Unknown", nameOf(names, nil))
}
