package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"net/http"
)

type FaqHandler struct {
	service *service.FaqService
}

func NewFaqHandler(service *service.FaqService) *FaqHandler {
	return &FaqHandler{service: service}
}

func parseFaqSearch(r *http.Request) (model.FaqSearch, *common.AppError) {
	search := model.FaqSearch{Keyword: common.QueryString(r, "keyword")}
	var appErr *common.AppError
	if search.CategoryID, appErr = common.QueryInt64Ptr(r, "categoryId"); appErr != nil {
		return search, appErr
	}
	if search.IsPublished, appErr = common.QueryBoolPtr(r, "isPublished"); appErr != nil {
		return search, appErr
	}
	return search, nil
}

func (h *FaqHandler) AdminList(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseFaqSearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	faqs, total, err := h.service.AdminList(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list FAQs")
	}
	common.WriteList(w, faqs, total, page)
	return nil
}

// PublicList godoc
// @Summary      List published FAQs
// @Tags         faq
// @Produce      json
// @Param        keyword     query     string  false  "Keyword in title or content"
// @Param        categoryId  query     int     false  "Category id"
// @Param        page        query     int     false  "Zero-based page"
// @Param        size        query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Router       /api/faq [get]
func (h *FaqHandler) PublicList(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseFaqSearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	faqs, total, err := h.service.PublicList(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list FAQs")
	}
	common.WriteList(w, faqs, total, page)
	return nil
}

func (h *FaqHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	faq, err := h.service.Get(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load FAQ")
	}
	common.WriteData(w, http.StatusOK, "", faq)
	return nil
}

// Create godoc
// @Summary      Create a FAQ
// @Tags         admin-faq
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.FaqRequest  true  "FAQ"
// @Success      201      {object}  common.DataResponse{data=model.Faq}
// @Failure      404      {object}  common.Response
// @Router       /api/admin/faq [post]
func (h *FaqHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.FaqRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	faq, err := h.service.Create(r.Context(), req, actorID)
	if err != nil {
		return common.FromError(err, "Could not create FAQ")
	}
	common.WriteData(w, http.StatusCreated, "FAQ created", faq)
	return nil
}

func (h *FaqHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.FaqRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	faq, err := h.service.Update(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not update FAQ")
	}
	common.WriteData(w, http.StatusOK, "FAQ updated", faq)
	return nil
}

func (h *FaqHandler) SetPublished(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.PublishRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	faq, err := h.service.SetPublished(r.Context(), id, req.IsPublished, actorID)
	if err != nil {
		return common.FromError(err, "Could not update FAQ")
	}
	common.WriteData(w, http.StatusOK, "", faq)
	return nil
}

func (h *FaqHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete FAQ")
	}
	common.WriteOK(w, "FAQ deleted")
	return nil
}

func (h *FaqHandler) Stats(w http.ResponseWriter, r *http.Request) *common.AppError {
	stats, err := h.service.StatsByCategory(r.Context())
	if err != nil {
		return common.FromError(err, "Could not load FAQ statistics")
	}
	common.WriteData(w, http.StatusOK, "", stats)
	return nil
}
