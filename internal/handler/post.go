package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/model"
	"bulletinboard/internal/service"
	"bulletinboard/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// List handles GET /post?page=&size=
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid page")
			return
		}
		page = p
	}

	size := model.DefaultPageSize
	if v := r.URL.Query().Get("size"); v != "" {
		s, err := strconv.Atoi(v)
		if err != nil {
			httputil.WriteBadRequest(w, "Invalid size")
			return
		}
		size = s
	}

	res, err := h.postService.List(r.Context(), page, size)
	if err != nil {
		log.Printf("[ERROR] List posts handler: page=%d err=%v", page, err)
		httputil.WriteInternalError(w, "Failed to list posts")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, res)
}

// Detail handles GET /post/{postID}/detail
func (h *PostHandler) Detail(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, "postID", "Invalid post ID")
	if !ok {
		return
	}

	post, err := h.postService.GetByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Post detail handler: post=%d err=%v", postID, err)
		httputil.WriteInternalError(w, "Failed to get post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /post/{postID}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	postID, ok := parseIDParam(w, r, "postID", "Invalid post ID")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), postID, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only delete your own posts")
		default:
			log.Printf("[ERROR] Delete post handler: post=%d user=%d err=%v", postID, userID, err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.DeletePostResponse{Success: true})
}

// parseIDParam reads a positive integer URL parameter, answering 400 when
// it is malformed.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, message string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteBadRequest(w, message)
		return 0, false
	}
	return id, true
}
