package handler

import (
	"academy-api/common"
	"academy-api/model"
	"academy-api/service"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"
)

const multipartOverhead = 1 << 20

type FileHandler struct {
	service *service.FileService
	cleaner *service.TempFileCleaner
}

func NewFileHandler(service *service.FileService, cleaner *service.TempFileCleaner) *FileHandler {
	return &FileHandler{service: service, cleaner: cleaner}
}

// contentDisposition carries an ASCII fallback name and the RFC 5987 UTF-8
// name.
func contentDisposition(disposition, fallback, name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII || r == '"' || r == '\\' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, fallback)
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, disposition, ascii, url.PathEscape(name))
}

// UploadTemp godoc
// @Summary      Upload a temp file
// @Description  Stores the file in the temp area. Reference it by tempFileId when saving an owner.
// @Tags         files
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "File"
// @Success      201   {object}  common.DataResponse{data=model.TempUpload}
// @Failure      400   {object}  common.Response
// @Router       /api/public/files/upload [post]
func (h *FileHandler) UploadTemp(w http.ResponseWriter, r *http.Request) *common.AppError {
	r.Body = http.MaxBytesReader(w, r.Body, h.service.MaxSize()+multipartOverhead)
	if err := r.ParseMultipartForm(multipartOverhead); err != nil {
		if strings.Contains(err.Error(), "too large") {
			return common.FromCode(common.ErrFileTooLarge, nil)
		}
		return common.NewAppError(http.StatusBadRequest, "Invalid multipart request", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return common.NewAppError(http.StatusBadRequest, "File part 'file' is required", nil)
	}
	defer file.Close()

	upload, err := h.service.UploadTemp(r.Context(), header.Filename, file)
	if err != nil {
		return common.FromError(err, "Could not upload file")
	}
	common.WriteData(w, http.StatusCreated, "File uploaded", upload)
	return nil
}

func (h *FileHandler) UploadBase64(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.Base64UploadRequest
	if appErr := common.ValidateAndDecode(r, &req); appErr != nil {
		return appErr
	}
	upload, err := h.service.UploadBase64(r.Context(), req)
	if err != nil {
		return common.FromError(err, "Could not upload file")
	}
	common.WriteData(w, http.StatusCreated, "File uploaded", upload)
	return nil
}

// GetTemp streams a temp upload inline for editor previews.
func (h *FileHandler) GetTemp(w http.ResponseWriter, r *http.Request) *common.AppError {
	f, upload, err := h.service.OpenTemp(r.Context(), r.PathValue("tempId"))
	if err != nil {
		return common.FromError(err, "Could not open file")
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return common.FromCode(common.ErrFileNotFound, nil)
	}
	w.Header().Set("Content-Type", upload.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition("inline", upload.FileName, upload.FileName))
	http.ServeContent(w, r, upload.FileName, info.ModTime(), f)
	return nil
}

// Download godoc
// @Summary      Download a file
// @Tags         files
// @Produce      octet-stream
// @Param        id   path      int  true  "File id"
// @Success      200  {file}    file
// @Failure      404  {object}  common.Response
// @Router       /api/public/files/download/{id} [get]
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	f, file, err := h.service.Open(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not open file")
	}
	defer f.Close()

	w.Header().Set("Content-Type", file.MimeType)
	w.Header().Set("Content-Disposition", contentDisposition("attachment", file.FileName, file.OriginalName))
	http.ServeContent(w, r, file.FileName, file.UpdatedAt, f)
	return nil
}

func (h *FileHandler) Info(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	file, err := h.service.Info(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not load file")
	}
	common.WriteData(w, http.StatusOK, "", file)
	return nil
}

func (h *FileHandler) Exists(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	exists, err := h.service.Exists(r.Context(), id)
	if err != nil {
		return common.FromError(err, "Could not check file")
	}
	common.WriteData(w, http.StatusOK, "", map[string]bool{"exists": exists})
	return nil
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := common.PathID(r, "id")
	if appErr != nil {
		return appErr
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		return common.FromError(err, "Could not delete file")
	}
	common.WriteOK(w, "File deleted")
	return nil
}

// CleanupStats godoc
// @Summary      Temp area statistics
// @Tags         admin-files
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  common.DataResponse{data=model.TempCleanupStats}
// @Router       /api/admin/files/temp/stats [get]
func (h *FileHandler) CleanupStats(w http.ResponseWriter, r *http.Request) *common.AppError {
	stats, err := h.cleaner.Stats()
	if err != nil {
		return common.FromError(err, "Could not read temp statistics")
	}
	common.WriteData(w, http.StatusOK, "", stats)
	return nil
}

func (h *FileHandler) RunCleanup(w http.ResponseWriter, r *http.Request) *common.AppError {
	result, err := h.cleaner.RunOnce(r.Context())
	if err != nil {
		return common.FromError(err, "Temp cleanup failed")
	}
	common.WriteData(w, http.StatusOK, "Temp cleanup finished", result)
	return nil
}
