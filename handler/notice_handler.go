package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"net/http"
	"strings"
)

type NoticeHandler struct {
	service *service.NoticeService
}

func NewNoticeHandler(service *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: service}
}

func parseNoticeSearch(r *http.Request) (model.NoticeSearch, *common.AppError) {
	search := model.NoticeSearch{
		Keyword:    common.QueryString(r, "keyword"),
		SearchType: model.NoticeSearchType(strings.ToUpper(common.QueryString(r, "searchType"))),
		Sort:       model.NoticeSort(strings.ToUpper(common.QueryString(r, "sort"))),
	}
	if search.SearchType != "" && !search.SearchType.IsValid() {
		return search, common.FromCode(common.ErrInvalidSearchType, nil)
	}

	var appErr *common.AppError
	if search.CategoryID, appErr = common.QueryInt64Ptr(r, "categoryId"); appErr != nil {
		return search, appErr
	}
	if search.IsImportant, appErr = common.QueryBoolPtr(r, "isImportant"); appErr != nil {
		return search, appErr
	}
	if search.IsPublished, appErr = common.QueryBoolPtr(r, "isPublished"); appErr != nil {
		return search, appErr
	}
	if v := strings.ToUpper(common.QueryString(r, "exposureType")); v != "" {
		exposure := model.ExposureType(v)
		if exposure != model.ExposureAlways && exposure != model.ExposurePeriod {
			return search, common.FromCode(common.ErrInvalidInput, nil)
		}
		search.ExposureType = &exposure
	}
	return search, nil
}

// AdminList godoc
// @Summary      Search notices
// @Tags         admin-notices
// @Produce      json
// @Security     BearerAuth
// @Param        keyword       query     string  false  "Keyword"
// @Param        searchType    query     string  false  "TITLE, CONTENT, AUTHOR or ALL"
// @Param        categoryId    query     int     false  "Category id"
// @Param        isImportant   query     bool    false  "Important only"
// @Param        isPublished   query     bool    false  "Published flag"
// @Param        exposureType  query     string  false  "ALWAYS or PERIOD"
// @Param        sort          query     string  false  "CREATED_DESC, CREATED_ASC, IMPORTANT_FIRST or VIEW_COUNT_DESC"
// @Param        page          query     int     false  "Zero-based page"
// @Param        size          query     int     false  "Page size"
// @Success      200           {object}  common.ListResponse
// @Failure      400           {object}  common.Response
// @Router       /api/admin/notices [get]
func (h *NoticeHandler) AdminList(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseNoticeSearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	notices, total, err := h.service.AdminList(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list notices")
	}
	common.WriteList(w, notices, total, page)
	return nil
}

// PublicList godoc
// @Summary      List exposable notices
// @Tags         notices
// @Produce      json
// @Param        keyword     query     string  false  "Keyword"
// @Param        searchType  query     string  false  "TITLE, CONTENT, AUTHOR or ALL"
// @Param        categoryId  query     int     false  "Category id"
// @Param        page        query     int     false  "Zero-based page"
// @Param        size        query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Router       /api/notices [get]
func (h *NoticeHandler) PublicList(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseNoticeSearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	notices, total, err := h.service.PublicList(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list notices")
	}
	common.WriteList(w, notices, total, page)
	return nil
}

func (h *NoticeHandler) AdminGet(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.get(w, r, false)
}

// PublicGet godoc
// @Summary      Read a notice
// @Description  Counts a view. Notices outside their exposure window are not found.
// @Tags         notices
// @Produce      json
// @Param        id   path      int  true  "Notice id"
// @Success      200  {object}  common.DataResponse{data=model.NoticeDetail}
// @Failure      404  {object}  common.Response
// @Router       /api/notices/{id} [get]
func (h *NoticeHandler) PublicGet(w http.ResponseWriter, r *http.Request) *common.AppError {
	return h.get(w, r, true)
}

func (h *NoticeHandler) get(w http.ResponseWriter, r *http.Request, public bool) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	detail, err := h.service.Get(r.Context(), id, public)
	if err != nil {
		return common.FromError(err, "Could not load notice")
	}
	common.WriteData(w, http.StatusOK, "", detail)
	return nil
}

// Create godoc
// @Summary      Create a notice
// @Description  Temp files referenced in attachments and inlineImages are promoted and their URLs in content rewritten.
// @Tags         admin-notices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.NoticeCreateRequest  true  "Notice"
// @Success      201      {object}  common.DataResponse{data=model.Notice}
// @Failure      400      {object}  common.Response
// @Router       /api/admin/notices [post]
func (h *NoticeHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.NoticeCreateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	notice, err := h.service.Create(r.Context(), req, actorID)
	if err != nil {
		return common.FromError(err, "Could not create notice")
	}
	common.WriteData(w, http.StatusCreated, "Notice created", notice)
	return nil
}

func (h *NoticeHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.NoticeUpdateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	notice, err := h.service.Update(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not update notice")
	}
	common.WriteData(w, http.StatusOK, "Notice updated", notice)
	return nil
}

func (h *NoticeHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete notice")
	}
	common.WriteOK(w, "Notice deleted")
	return nil
}

func (h *NoticeHandler) ToggleImportant(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	notice, err := h.service.ToggleImportant(r.Context(), id, actorID)
	if err != nil {
		return common.FromError(err, "Could not update notice")
	}
	common.WriteData(w, http.StatusOK, "", notice)
	return nil
}

// UpdatePublished godoc
// @Summary      Publish or unpublish a notice
// @Description  makePermanent switches the notice to ALWAYS exposure. Publishing a notice whose period has ended does the same.
// @Tags         admin-notices
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                         true  "Notice id"
// @Param        request  body      model.NoticePublishRequest  true  "Flags"
// @Success      200      {object}  common.DataResponse{data=model.Notice}
// @Router       /api/admin/notices/{id}/published [patch]
func (h *NoticeHandler) UpdatePublished(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.NoticePublishRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	notice, err := h.service.UpdatePublished(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not update notice")
	}
	common.WriteData(w, http.StatusOK, "", notice)
	return nil
}

func (h *NoticeHandler) Important(w http.ResponseWriter, r *http.Request) *common.AppError {
	notices, err := h.service.Important(r.Context(), common.QueryInt(r, "limit", 0))
	if err != nil {
		return common.FromError(err, "Could not list notices")
	}
	common.WriteData(w, http.StatusOK, "", notices)
	return nil
}

func (h *NoticeHandler) Recent(w http.ResponseWriter, r *http.Request) *common.AppError {
	notices, err := h.service.Recent(r.Context(), common.QueryInt(r, "limit", 0))
	if err != nil {
		return common.FromError(err, "Could not list notices")
	}
	common.WriteData(w, http.StatusOK, "", notices)
	return nil
}

func (h *NoticeHandler) Stats(w http.ResponseWriter, r *http.Request) *common.AppError {
	stats, err := h.service.StatsByCategory(r.Context())
	if err != nil {
		return common.FromError(err, "Could not load notice statistics")
	}
	common.WriteData(w, http.StatusOK, "", stats)
	return nil
}
