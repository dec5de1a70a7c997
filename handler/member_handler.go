package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"net/http"
)

type MemberHandler struct {
	service *service.MemberService
}

func NewMemberHandler(service *service.MemberService) *MemberHandler {
	return &MemberHandler{service: service}
}

// List godoc
// @Summary      List members
// @Tags         admin-members
// @Produce      json
// @Security     BearerAuth
// @Param        keyword  query     string  false  "Username or member name"
// @Param        role     query     string  false  "USER, ADMIN or SUPER_ADMIN"
// @Param        status   query     string  false  "ACTIVE, SUSPENDED or DELETED"
// @Param        page     query     int     false  "Zero-based page"
// @Param        size     query     int     false  "Page size"
// @Success      200      {object}  common.ListResponse
// @Router       /api/admin/members [get]
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	search := model.MemberSearch{Keyword: common.QueryString(r, "keyword")}
	if v := common.QueryString(r, "role"); v != "" {
		role := model.MemberRole(v)
		if !role.IsValid() {
			return common.FromCode(common.ErrInvalidInput, nil)
		}
		search.Role = &role
	}
	if v := common.QueryString(r, "status"); v != "" {
		status := model.MemberStatus(v)
		if !status.IsValid() {
			return common.FromCode(common.ErrInvalidInput, nil)
		}
		search.Status = &status
	}
	page := common.ParsePageRequest(r)

	members, total, err := h.service.List(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list members")
	}
	common.WriteList(w, members, total, page)
	return nil
}

func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load member")
	}
	common.WriteData(w, http.StatusOK, "", member)
	return nil
}

// UpdateStatus godoc
// @Summary      Change member status
// @Tags         admin-members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                        true  "Member id"
// @Param        request  body      model.MemberStatusRequest  true  "New status"
// @Success      200      {object}  common.DataResponse{data=model.Member}
// @Router       /api/admin/members/{id}/status [patch]
func (h *MemberHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.MemberStatusRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	member, err := h.service.UpdateStatus(r.Context(), id, req, actorID, currentRole(r))
	if err != nil {
		return common.FromError(err, "Could not change member status")
	}
	common.WriteData(w, http.StatusOK, "Member status changed", member)
	return nil
}

func (h *MemberHandler) UpdateLock(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.MemberLockRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	member, err := h.service.SetLocked(r.Context(), id, req.Locked, actorID, currentRole(r))
	if err != nil {
		return common.FromError(err, "Could not change member lock")
	}
	common.WriteData(w, http.StatusOK, "", member)
	return nil
}

// UpdateRole godoc
// @Summary      Change member role
// @Description  Only a SUPER_ADMIN may grant or revoke admin roles.
// @Tags         admin-members
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                      true  "Member id"
// @Param        request  body      model.MemberRoleRequest  true  "New role"
// @Success      200      {object}  common.DataResponse{data=model.Member}
// @Failure      403      {object}  common.Response
// @Router       /api/admin/members/{id}/role [patch]
func (h *MemberHandler) UpdateRole(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.MemberRoleRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	member, err := h.service.ChangeRole(r.Context(), id, req.Role, actorID, currentRole(r))
	if err != nil {
		return common.FromError(err, "Could not change member role")
	}
	common.WriteData(w, http.StatusOK, "Member role changed", member)
	return nil
}

func (h *MemberHandler) ResetPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ResetPasswordRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.ResetPassword(r.Context(), id, req.NewPassword, actorID, currentRole(r)); err != nil {
		return common.FromError(err, "Could not reset password")
	}
	common.WriteOK(w, "Password reset")
	return nil
}
