package handler

import (
	"academy-api/common"
	"academy-api/logger"
	"academy-api/model"
	"academy-api/service"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ApplyHandler struct {
	service *service.ApplyService
}

func NewApplyHandler(service *service.ApplyService) *ApplyHandler {
	return &ApplyHandler{service: service}
}

func parseApplySearch(r *http.Request) (model.ApplySearch, *common.AppError) {
	search := model.ApplySearch{
		Keyword:      common.QueryString(r, "keyword"),
		AssigneeName: common.QueryString(r, "assigneeName"),
		SortAsc:      strings.EqualFold(common.QueryString(r, "sort"), "asc"),
	}
	if v := strings.ToUpper(common.QueryString(r, "status")); v != "" {
		status := model.ApplicationStatus(v)
		if !status.IsValid() {
			return search, common.FromCode(common.ErrInvalidApplicationStatus, nil)
		}
		search.Status = &status
	}
	if v := strings.ToUpper(common.QueryString(r, "division")); v != "" {
		division := model.Division(v)
		if division != model.DivisionMiddle && division != model.DivisionHigh && division != model.DivisionSelfStudyRetake {
			return search, common.FromCode(common.ErrInvalidInput, nil)
		}
		search.Division = &division
	}
	var appErr *common.AppError
	if search.CreatedFrom, appErr = common.QueryTimePtr(r, "createdFrom", false); appErr != nil {
		return search, appErr
	}
	if search.CreatedTo, appErr = common.QueryTimePtr(r, "createdTo", true); appErr != nil {
		return search, appErr
	}
	return search, nil
}

// Submit godoc
// @Summary      Submit an application
// @Description  Public admission form. Transcripts and photo reference temp uploads.
// @Tags         apply
// @Accept       json
// @Produce      json
// @Param        request  body      model.ApplyApplicationRequest  true  "Application"
// @Success      201      {object}  common.DataResponse
// @Failure      400      {object}  common.Response
// @Router       /api/apply-applications [post]
func (h *ApplyHandler) Submit(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.ApplyApplicationRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	app, err := h.service.Create(r.Context(), req, nil)
	if err != nil {
		return common.FromError(err, "Could not submit application")
	}
	common.WriteData(w, http.StatusCreated, "Application submitted", map[string]int64{"id": app.ID})
	return nil
}

// List godoc
// @Summary      Search applications
// @Tags         admin-apply
// @Produce      json
// @Security     BearerAuth
// @Param        keyword       query     string  false  "Student name, phone or guardian name"
// @Param        status        query     string  false  "REGISTERED, REVIEW, COMPLETED or CANCELED"
// @Param        division      query     string  false  "MIDDLE, HIGH or SELF_STUDY_RETAKE"
// @Param        assigneeName  query     string  false  "Assignee"
// @Param        createdFrom   query     string  false  "yyyy-MM-dd or RFC 3339"
// @Param        createdTo     query     string  false  "yyyy-MM-dd or RFC 3339"
// @Param        sort          query     string  false  "asc or desc"
// @Param        page          query     int     false  "Zero-based page"
// @Param        size          query     int     false  "Page size"
// @Success      200           {object}  common.ListResponse
// @Router       /api/admin/apply-applications [get]
func (h *ApplyHandler) List(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseApplySearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	apps, total, err := h.service.List(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list applications")
	}
	common.WriteList(w, apps, total, page)
	return nil
}

func (h *ApplyHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load application")
	}
	common.WriteData(w, http.StatusOK, "", detail)
	return nil
}

func (h *ApplyHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ApplyApplicationRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	app, err := h.service.Create(r.Context(), req, &actorID)
	if err != nil {
		return common.FromError(err, "Could not create application")
	}
	common.WriteData(w, http.StatusCreated, "Application created", app)
	return nil
}

// Update godoc
// @Summary      Update an application
// @Description  Completed applications cannot be modified. Writes an UPDATE log.
// @Tags         admin-apply
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                       true  "Application id"
// @Param        request  body      model.ApplyUpdateRequest  true  "Application"
// @Success      200      {object}  common.DataResponse{data=model.ApplyApplication}
// @Failure      400      {object}  common.Response
// @Router       /api/admin/apply-applications/{id} [put]
func (h *ApplyHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ApplyUpdateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	app, err := h.service.Update(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not update application")
	}
	common.WriteData(w, http.StatusOK, "Application updated", app)
	return nil
}

func (h *ApplyHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete application")
	}
	common.WriteOK(w, "Application deleted")
	return nil
}

func (h *ApplyHandler) AddLog(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ApplyLogRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	entry, err := h.service.AddLog(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not add log")
	}
	common.WriteData(w, http.StatusCreated, "Log added", entry)
	return nil
}

func (h *ApplyHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ApplyStatusRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	app, err := h.service.ChangeStatus(r.Context(), id, model.ApplicationStatus(strings.ToUpper(string(req.Status))), actorID)
	if err != nil {
		return common.FromError(err, "Could not change status")
	}
	common.WriteData(w, http.StatusOK, "Status changed", app)
	return nil
}

func (h *ApplyHandler) Assign(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.ApplyAssigneeRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	app, err := h.service.Assign(r.Context(), id, req.AssigneeName, actorID)
	if err != nil {
		return common.FromError(err, "Could not assign application")
	}
	common.WriteData(w, http.StatusOK, "Assignee changed", app)
	return nil
}

func (h *ApplyHandler) Duplicates(w http.ResponseWriter, r *http.Request) *common.AppError {
	phone := common.QueryString(r, "phone")
	if phone == "" {
		return common.NewAppError(http.StatusBadRequest, "phone query parameter is required", nil)
	}
	apps, err := h.service.Duplicates(r.Context(), phone, common.QueryInt(r, "hours", 0))
	if err != nil {
		return common.FromError(err, "Could not find duplicates")
	}
	common.WriteData(w, http.StatusOK, "", apps)
	return nil
}

func (h *ApplyHandler) Delayed(w http.ResponseWriter, r *http.Request) *common.AppError {
	apps, err := h.service.Delayed(r.Context(), common.QueryInt(r, "days", 0))
	if err != nil {
		return common.FromError(err, "Could not list delayed applications")
	}
	common.WriteData(w, http.StatusOK, "", apps)
	return nil
}

func (h *ApplyHandler) ByAssignee(w http.ResponseWriter, r *http.Request) *common.AppError {
	apps, err := h.service.ByAssignee(r.Context(), common.QueryString(r, "assigneeName"))
	if err != nil {
		return common.FromError(err, "Could not list applications")
	}
	common.WriteData(w, http.StatusOK, "", apps)
	return nil
}

func (h *ApplyHandler) Statistics(w http.ResponseWriter, r *http.Request) *common.AppError {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		return common.FromError(err, "Could not load statistics")
	}
	common.WriteData(w, http.StatusOK, "", stats)
	return nil
}

// Export godoc
// @Summary      Export applications to Excel
// @Tags         admin-apply
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        keyword   query     string  false  "Student name, phone or guardian name"
// @Param        status    query     string  false  "Status"
// @Param        division  query     string  false  "Division"
// @Success      200       {file}    file
// @Router       /api/admin/apply-applications/export [get]
func (h *ApplyHandler) Export(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseApplySearch(r)
	if appErr != nil {
		return appErr
	}
	data, fileName, err := h.service.Export(r.Context(), search)
	if err != nil {
		return common.FromError(err, "Could not export applications")
	}

	displayName := service.ExportDisplayName(common.Now())
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", contentDisposition("attachment", fileName, displayName))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.Log.WithFields(logrus.Fields{"file_name": fileName}).WithError(err).Warn("Export write interrupted")
	}
	return nil
}
