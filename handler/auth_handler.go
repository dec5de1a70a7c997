package handler

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/service"
	"net/http"
)

type AuthHandler struct {
	service *service.AuthService
}

func NewAuthHandler(service *service.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// SignUp godoc
// @Summary      Register a member
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignUpRequest  true  "Sign-up payload"
// @Success      201      {object}  common.DataResponse
// @Failure      400      {object}  common.Response
// @Failure      409      {object}  common.Response
// @Router       /api/auth/sign-up [post]
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignUpRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	member, err := h.service.SignUp(r.Context(), req)
	if err != nil {
		return common.FromError(err, "Could not register member")
	}
	common.WriteData(w, http.StatusCreated, "Member registered", map[string]int64{"memberId": member.ID})
	return nil
}

// SignIn godoc
// @Summary      Sign in
// @Description  Issues an access token and a refresh token. Throttled per client IP.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.SignInRequest  true  "Credentials"
// @Success      200      {object}  common.DataResponse{data=model.TokenPair}
// @Failure      401      {object}  common.Response
// @Failure      423      {object}  common.Response
// @Failure      429      {object}  common.Response
// @Router       /api/auth/sign-in [post]
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.SignInRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.service.SignIn(r.Context(), req, r.UserAgent(), common.ClientIP(r))
	if err != nil {
		return common.FromError(err, "Could not sign in")
	}
	common.WriteData(w, http.StatusOK, "Signed in", pair)
	return nil
}

// Refresh godoc
// @Summary      Rotate tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  common.DataResponse{data=model.TokenPair}
// @Failure      401      {object}  common.Response
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken, r.UserAgent(), common.ClientIP(r))
	if err != nil {
		return common.FromError(err, "Could not refresh token")
	}
	common.WriteData(w, http.StatusOK, "Token refreshed", pair)
	return nil
}

// SignOut godoc
// @Summary      Revoke a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      model.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  common.Response
// @Router       /api/auth/sign-out [post]
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	if err := h.service.SignOut(r.Context(), req.RefreshToken); err != nil {
		return common.FromError(err, "Could not sign out")
	}
	common.WriteOK(w, "Signed out")
	return nil
}

// Me godoc
// @Summary      Current member profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.DataResponse{data=model.Member}
// @Failure      401  {object}  common.Response
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) *common.AppError {
	memberID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	member, err := h.service.Me(r.Context(), memberID)
	if err != nil {
		return common.FromError(err, "Could not load profile")
	}
	common.WriteData(w, http.StatusOK, "", member)
	return nil
}

// ChangePassword godoc
// @Summary      Change own password
// @Description  Revokes every refresh token of the member.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.ChangePasswordRequest  true  "Passwords"
// @Success      200      {object}  common.Response
// @Failure      400      {object}  common.Response
// @Router       /api/auth/change-password [post]
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	memberID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ChangePasswordRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}

	if err := h.service.ChangePassword(r.Context(), memberID, req); err != nil {
		return common.FromError(err, "Could not change password")
	}
	logger.Log.WithField("member_id", memberID).Info("Password change request completed")
	common.WriteOK(w, "Password changed")
	return nil
}
