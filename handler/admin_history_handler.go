package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"net/http"
	"strings"
)

type AdminHistoryHandler struct {
	service *service.AdminHistoryService
}

func NewAdminHistoryHandler(service *service.AdminHistoryService) *AdminHistoryHandler {
	return &AdminHistoryHandler{service: service}
}

// Logins godoc
// @Summary      Admin sign-in history
// @Tags         admin-history
// @Produce      json
// @Security     BearerAuth
// @Param        adminUsername  query     string  false  "Username contains"
// @Param        success        query     bool    false  "Successful attempts only, or failures only"
// @Param        from           query     string  false  "From date (YYYY-MM-DD)"
// @Param        to             query     string  false  "To date (YYYY-MM-DD)"
// @Param        page           query     int     false  "Zero-based page"
// @Param        size           query     int     false  "Page size"
// @Success      200            {object}  common.ListResponse
// @Failure      400            {object}  common.Response
// @Router       /api/admin/history/login [get]
func (h *AdminHistoryHandler) Logins(w http.ResponseWriter, r *http.Request) *common.AppError {
	search := model.AdminLoginSearch{AdminUsername: common.QueryString(r, "adminUsername")}
	var appErr *common.AppError
	if search.Success, appErr = common.QueryBoolPtr(r, "success"); appErr != nil {
		return appErr
	}
	if search.From, appErr = common.QueryTimePtr(r, "from", false); appErr != nil {
		return appErr
	}
	if search.To, appErr = common.QueryTimePtr(r, "to", true); appErr != nil {
		return appErr
	}

	page := common.ParsePageRequest(r)
	histories, total, err := h.service.Logins(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list login history")
	}
	common.WriteList(w, histories, total, page)
	return nil
}

// Actions godoc
// @Summary      Admin action log
// @Tags         admin-history
// @Produce      json
// @Security     BearerAuth
// @Param        adminId     query     int     false  "Acting admin id"
// @Param        actionType  query     string  false  "CREATE, UPDATE, DELETE, STATUS_CHANGE or EXPORT"
// @Param        targetType  query     string  false  "Target type, e.g. NOTICE"
// @Param        targetId    query     int     false  "Target id"
// @Param        from        query     string  false  "From date (YYYY-MM-DD)"
// @Param        to          query     string  false  "To date (YYYY-MM-DD)"
// @Param        page        query     int     false  "Zero-based page"
// @Param        size        query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Failure      400         {object}  common.Response
// @Router       /api/admin/history/action [get]
func (h *AdminHistoryHandler) Actions(w http.ResponseWriter, r *http.Request) *common.AppError {
	var (
		search model.AdminActionSearch
		appErr *common.AppError
	)
	if search.AdminID, appErr = common.QueryInt64Ptr(r, "adminId"); appErr != nil {
		return appErr
	}
	if search.TargetID, appErr = common.QueryInt64Ptr(r, "targetId"); appErr != nil {
		return appErr
	}
	if search.From, appErr = common.QueryTimePtr(r, "from", false); appErr != nil {
		return appErr
	}
	if search.To, appErr = common.QueryTimePtr(r, "to", true); appErr != nil {
		return appErr
	}
	if v := strings.ToUpper(common.QueryString(r, "actionType")); v != "" {
		action := model.AdminActionType(v)
		search.ActionType = &action
	}
	if v := strings.ToUpper(common.QueryString(r, "targetType")); v != "" {
		target := model.AdminTargetType(v)
		search.TargetType = &target
	}

	page := common.ParsePageRequest(r)
	logs, total, err := h.service.Actions(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list admin actions")
	}
	common.WriteList(w, logs, total, page)
	return nil
}

func (h *AdminHistoryHandler) Action(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	l, err := h.service.Action(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load admin action")
	}
	common.WriteData(w, http.StatusOK, "", l)
	return nil
}
