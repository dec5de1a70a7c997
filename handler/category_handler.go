package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"net/http"
)

type CategoryHandler struct {
	service *service.CategoryService
}

func NewCategoryHandler(service *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: service}
}

// ListGroups godoc
// @Summary      List category groups
// @Tags         admin-categories
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.DataResponse{data=[]model.CategoryGroup}
// @Router       /api/admin/categories/groups [get]
func (h *CategoryHandler) ListGroups(w http.ResponseWriter, r *http.Request) *common.AppError {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		return common.FromError(err, "Could not list category groups")
	}
	common.WriteData(w, http.StatusOK, "", groups)
	return nil
}

func (h *CategoryHandler) GetGroup(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "groupId")
	if appErr != nil {
		return appErr
	}
	group, err := h.service.GetGroup(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load category group")
	}
	common.WriteData(w, http.StatusOK, "", group)
	return nil
}

// CreateGroup godoc
// @Summary      Create a category group
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.CategoryGroupCreateRequest  true  "Group"
// @Success      201      {object}  common.DataResponse{data=model.CategoryGroup}
// @Failure      409      {object}  common.Response
// @Router       /api/admin/categories/groups [post]
func (h *CategoryHandler) CreateGroup(w http.ResponseWriter, r *http.Request) *common.AppError {
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.CategoryGroupCreateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	group, err := h.service.CreateGroup(r.Context(), req, actorID)
	if err != nil {
		return common.FromError(err, "Could not create category group")
	}
	common.WriteData(w, http.StatusCreated, "Category group created", group)
	return nil
}

func (h *CategoryHandler) UpdateGroup(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "groupId")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.CategoryGroupUpdateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	group, err := h.service.UpdateGroup(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not update category group")
	}
	common.WriteData(w, http.StatusOK, "Category group updated", group)
	return nil
}

func (h *CategoryHandler) DeleteGroup(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "groupId")
	if appErr != nil {
		return appErr
	}
	if err := h.service.DeleteGroup(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete category group")
	}
	common.WriteOK(w, "Category group deleted")
	return nil
}

func (h *CategoryHandler) ListAll(w http.ResponseWriter, r *http.Request) *common.AppError {
	categories, err := h.service.ListAll(r.Context())
	if err != nil {
		return common.FromError(err, "Could not list categories")
	}
	common.WriteData(w, http.StatusOK, "", categories)
	return nil
}

// ListByGroup godoc
// @Summary      Categories of a group
// @Tags         categories
// @Produce      json
// @Param        groupId  path      int  true  "Group id"
// @Success      200      {object}  common.DataResponse{data=[]model.Category}
// @Failure      404      {object}  common.Response
// @Router       /api/categories/groups/{groupId} [get]
func (h *CategoryHandler) ListByGroup(w http.ResponseWriter, r *http.Request) *common.AppError {
	groupID, appErr := common.PathID(r, "groupId")
	if appErr != nil {
		return appErr
	}
	categories, err := h.service.ListByGroup(r.Context(), groupID)
	if err != nil {
		return common.FromError(err, "Could not list categories")
	}
	common.WriteData(w, http.StatusOK, "", categories)
	return nil
}

func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	category, err := h.service.Get(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load category")
	}
	common.WriteData(w, http.StatusOK, "", category)
	return nil
}

// Create godoc
// @Summary      Create a category
// @Description  A missing or zero sort order appends the category to its group.
// @Tags         admin-categories
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.CategoryCreateRequest  true  "Category"
// @Success      201      {object}  common.DataResponse{data=model.Category}
// @Failure      400      {object}  common.Response
// @Failure      409      {object}  common.Response
// @Router       /api/admin/categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.CategoryCreateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	category, err := h.service.Create(r.Context(), req, actorID)
	if err != nil {
		return common.FromError(err, "Could not create category")
	}
	common.WriteData(w, http.StatusCreated, "Category created", category)
	return nil
}

func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.CategoryUpdateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	category, err := h.service.Update(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not update category")
	}
	common.WriteData(w, http.StatusOK, "Category updated", category)
	return nil
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete category")
	}
	common.WriteOK(w, "Category deleted")
	return nil
}
