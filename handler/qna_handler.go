package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"net/http"
)

// QnaViewTokenHeader carries the token returned by the password check.
const QnaViewTokenHeader = "X-Qna-View-Token"

type QnaHandler struct {
	service *service.QnaService
}

func NewQnaHandler(service *service.QnaService) *QnaHandler {
	return &QnaHandler{service: service}
}

func parseQnaSearch(r *http.Request) (model.QnaSearch, *common.AppError) {
	search := model.QnaSearch{Keyword: common.QueryString(r, "keyword")}
	var appErr *common.AppError
	if search.IsAnswered, appErr = common.QueryBoolPtr(r, "isAnswered"); appErr != nil {
		return search, appErr
	}
	if search.IsSecret, appErr = common.QueryBoolPtr(r, "isSecret"); appErr != nil {
		return search, appErr
	}
	if search.IsPublished, appErr = common.QueryBoolPtr(r, "isPublished"); appErr != nil {
		return search, appErr
	}
	if search.From, appErr = common.QueryTimePtr(r, "from", false); appErr != nil {
		return search, appErr
	}
	if search.To, appErr = common.QueryTimePtr(r, "to", true); appErr != nil {
		return search, appErr
	}
	return search, nil
}

// PublicList godoc
// @Summary      List published questions
// @Description  Secret questions are listed with their title only.
// @Tags         qna
// @Produce      json
// @Param        keyword     query     string  false  "Keyword in title, content or author"
// @Param        isAnswered  query     bool    false  "Answered flag"
// @Param        page        query     int     false  "Zero-based page"
// @Param        size        query     int     false  "Page size"
// @Success      200         {object}  common.ListResponse
// @Router       /api/qna/questions [get]
func (h *QnaHandler) PublicList(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseQnaSearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	questions, total, err := h.service.PublicList(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list questions")
	}
	common.WriteList(w, questions, total, page)
	return nil
}

// PublicGet godoc
// @Summary      Read a question
// @Description  Counts a view. Secret questions need the token from verify-password.
// @Tags         qna
// @Produce      json
// @Param        id                path      int     true   "Question id"
// @Param        X-Qna-View-Token  header    string  false  "View token"
// @Success      200               {object}  common.DataResponse{data=model.QnaDetail}
// @Failure      401               {object}  common.Response
// @Failure      403               {object}  common.Response
// @Failure      404               {object}  common.Response
// @Router       /api/qna/questions/{id} [get]
func (h *QnaHandler) PublicGet(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	token := r.Header.Get(QnaViewTokenHeader)
	if token == "" {
		token = common.QueryString(r, "viewToken")
	}
	detail, err := h.service.PublicDetail(r.Context(), id, token)
	if err != nil {
		return common.FromError(err, "Could not load question")
	}
	common.WriteData(w, http.StatusOK, "", detail)
	return nil
}

// Create godoc
// @Summary      Ask a question
// @Tags         qna
// @Accept       json
// @Produce      json
// @Param        request  body      model.QnaCreateRequest  true  "Question"
// @Success      201      {object}  common.DataResponse{data=model.QnaQuestion}
// @Failure      400      {object}  common.Response
// @Router       /api/qna/questions [post]
func (h *QnaHandler) Create(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.QnaCreateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	question, err := h.service.Create(r.Context(), req, common.ClientIP(r))
	if err != nil {
		return common.FromError(err, "Could not create question")
	}
	common.WriteData(w, http.StatusCreated, "Question registered", question)
	return nil
}

// VerifyPassword godoc
// @Summary      Unlock a secret question
// @Description  Repeated failures from one IP are locked out for a while.
// @Tags         qna
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "Question id"
// @Param        request  body      model.QnaPasswordRequest  true  "Password"
// @Success      200      {object}  common.DataResponse{data=model.QnaViewToken}
// @Failure      401      {object}  common.Response
// @Failure      429      {object}  common.Response
// @Router       /api/qna/questions/{id}/verify-password [post]
func (h *QnaHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	var req model.QnaPasswordRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	token, err := h.service.VerifyPassword(r.Context(), id, req.Password, common.ClientIP(r))
	if err != nil {
		return common.FromError(err, "Could not verify password")
	}
	common.WriteData(w, http.StatusOK, "", token)
	return nil
}

// Update godoc
// @Summary      Edit a question
// @Description  Needs the question password. Answered questions are frozen.
// @Tags         qna
// @Accept       json
// @Produce      json
// @Param        id       path      int                     true  "Question id"
// @Param        request  body      model.QnaUpdateRequest  true  "Question"
// @Success      200      {object}  common.DataResponse{data=model.QnaQuestion}
// @Failure      400      {object}  common.Response
// @Failure      401      {object}  common.Response
// @Router       /api/qna/questions/{id} [put]
func (h *QnaHandler) Update(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	var req model.QnaUpdateRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	question, err := h.service.Update(r.Context(), id, req, common.ClientIP(r))
	if err != nil {
		return common.FromError(err, "Could not update question")
	}
	common.WriteData(w, http.StatusOK, "Question updated", question)
	return nil
}

// Delete godoc
// @Summary      Delete a question
// @Tags         qna
// @Accept       json
// @Produce      json
// @Param        id       path      int                       true  "Question id"
// @Param        request  body      model.QnaPasswordRequest  true  "Password"
// @Success      200      {object}  common.Response
// @Failure      401      {object}  common.Response
// @Router       /api/qna/questions/{id} [delete]
func (h *QnaHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	var req model.QnaPasswordRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	if err := h.service.Delete(r.Context(), id, req.Password, common.ClientIP(r)); err != nil {
		return common.FromError(err, "Could not delete question")
	}
	common.WriteOK(w, "Question deleted")
	return nil
}

// AdminList godoc
// @Summary      Search questions
// @Tags         admin-qna
// @Produce      json
// @Security     BearerAuth
// @Param        keyword      query     string  false  "Keyword in title, content or author"
// @Param        isAnswered   query     bool    false  "Answered flag"
// @Param        isSecret     query     bool    false  "Secret flag"
// @Param        isPublished  query     bool    false  "Published flag"
// @Param        from         query     string  false  "From date (YYYY-MM-DD)"
// @Param        to           query     string  false  "To date (YYYY-MM-DD)"
// @Param        page         query     int     false  "Zero-based page"
// @Param        size         query     int     false  "Page size"
// @Success      200          {object}  common.ListResponse
// @Router       /api/admin/qna/questions [get]
func (h *QnaHandler) AdminList(w http.ResponseWriter, r *http.Request) *common.AppError {
	search, appErr := parseQnaSearch(r)
	if appErr != nil {
		return appErr
	}
	page := common.ParsePageRequest(r)
	questions, total, err := h.service.AdminList(r.Context(), search, page)
	if err != nil {
		return common.FromError(err, "Could not list questions")
	}
	common.WriteList(w, questions, total, page)
	return nil
}

func (h *QnaHandler) AdminGet(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	detail, err := h.service.AdminGet(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load question")
	}
	common.WriteData(w, http.StatusOK, "", detail)
	return nil
}

func (h *QnaHandler) UpdateFlags(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	var req model.QnaStatusRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	question, err := h.service.UpdateFlags(r.Context(), id, req)
	if err != nil {
		return common.FromError(err, "Could not update question")
	}
	common.WriteData(w, http.StatusOK, "", question)
	return nil
}

func (h *QnaHandler) AdminDelete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.AdminDelete(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete question")
	}
	common.WriteOK(w, "Question deleted")
	return nil
}

// SaveAnswer godoc
// @Summary      Answer a question
// @Description  Creates or replaces the answer and marks the question answered.
// @Tags         admin-qna
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      int                     true  "Question id"
// @Param        request  body      model.QnaAnswerRequest  true  "Answer"
// @Success      200      {object}  common.DataResponse{data=model.QnaAnswer}
// @Failure      404      {object}  common.Response
// @Router       /api/admin/qna/questions/{id}/answer [put]
func (h *QnaHandler) SaveAnswer(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	actorID, appErr := currentMemberID(r)
	if appErr != nil {
		return appErr
	}
	var req model.QnaAnswerRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	answer, err := h.service.SaveAnswer(r.Context(), id, req, actorID)
	if err != nil {
		return common.FromError(err, "Could not save answer")
	}
	common.WriteData(w, http.StatusOK, "Answer saved", answer)
	return nil
}

func (h *QnaHandler) DeleteAnswer(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.DeleteAnswer(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete answer")
	}
	common.WriteOK(w, "Answer deleted")
	return nil
}

func (h *QnaHandler) Statistics(w http.ResponseWriter, r *http.Request) *common.AppError {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		return common.FromError(err, "Could not load statistics")
	}
	common.WriteData(w, http.StatusOK, "", stats)
	return nil
}
