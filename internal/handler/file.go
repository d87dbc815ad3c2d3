package handler

import (
	"errors"
	"log"
	"net/http"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/model"
	"bulletinboard/internal/service"
)

// FileHandler redirects attachment downloads to object storage.
type FileHandler struct {
	postService *service.PostService
	fileService *service.FileService // nil when storage is not configured
}

func NewFileHandler(postService *service.PostService, fileService *service.FileService) *FileHandler {
	return &FileHandler{postService: postService, fileService: fileService}
}

// Download handles GET /files/{fileID}/download
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	fileID, ok := parseIDParam(w, r, "fileID", "Invalid file ID")
	if !ok {
		return
	}
	if h.fileService == nil {
		httputil.WriteUnavailable(w, "File storage is not configured")
		return
	}

	file, err := h.postService.GetFile(r.Context(), fileID)
	if err != nil {
		if errors.Is(err, model.ErrFileNotFound) {
			httputil.WriteNotFound(w, "File not found")
			return
		}
		log.Printf("[ERROR] Download handler: file=%d err=%v", fileID, err)
		httputil.WriteInternalError(w, "Failed to get file")
		return
	}

	url, err := h.fileService.DownloadURL(r.Context(), file.ObjectKey, file.DisplayName())
	if err != nil {
		log.Printf("[ERROR] Download handler: file=%d err=%v", fileID, err)
		httputil.WriteInternalError(w, "Failed to create download link")
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}
