package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/model"
	"bulletinboard/internal/service"
	"bulletinboard/internal/transport/http/middleware"
)

// CommentHandler serves a post's comment thread. Every endpoint answers
// with the full thread.
type CommentHandler struct {
	commentService *service.CommentService
}

func NewCommentHandler(commentService *service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// List handles GET /post/{postID}/comment
func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	postID, ok := parseIDParam(w, r, "postID", "Invalid post ID")
	if !ok {
		return
	}

	comments, err := h.commentService.List(r.Context(), postID)
	if err != nil {
		h.writeError(w, "List comments", postID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

// Create handles POST /post/{postID}/comment
// Form fields: commentContent, parentCommentId (optional), depth (optional).
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := parseIDParam(w, r, "postID", "Invalid post ID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		httputil.WriteBadRequest(w, "Invalid form body")
		return
	}

	req := model.CreateCommentRequest{Content: r.PostForm.Get("commentContent")}
	if v := r.PostForm.Get("parentCommentId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			httputil.WriteBadRequest(w, "Invalid parentCommentId")
			return
		}
		req.ParentCommentID = id
	}
	if v := r.PostForm.Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 0 {
			httputil.WriteBadRequest(w, "Invalid depth")
			return
		}
		req.Depth = d
	}

	comments, err := h.commentService.Create(r.Context(), postID, userID, req)
	if err != nil {
		h.writeError(w, "Create comment", postID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, comments)
}

// Update handles PUT /post/{postID}/comment/{commentID}
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := parseIDParam(w, r, "postID", "Invalid post ID")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(w, r, "commentID", "Invalid comment ID")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := r.ParseForm(); err != nil {
		httputil.WriteBadRequest(w, "Invalid form body")
		return
	}

	comments, err := h.commentService.Update(r.Context(), postID, commentID, userID, r.PostForm.Get("commentContent"))
	if err != nil {
		h.writeError(w, "Update comment", postID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

// Delete handles DELETE /post/{postID}/comment/{commentID}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := parseIDParam(w, r, "postID", "Invalid post ID")
	if !ok {
		return
	}
	commentID, ok := parseIDParam(w, r, "commentID", "Invalid comment ID")
	if !ok {
		return
	}

	comments, err := h.commentService.Delete(r.Context(), postID, commentID, userID)
	if err != nil {
		h.writeError(w, "Delete comment", postID, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, comments)
}

func (h *CommentHandler) writeError(w http.ResponseWriter, op string, postID int64, err error) {
	switch {
	case errors.Is(err, model.ErrPostNotFound):
		httputil.WriteNotFound(w, "Post not found")
	case errors.Is(err, model.ErrCommentNotFound):
		httputil.WriteNotFound(w, "Comment not found")
	case errors.Is(err, model.ErrCommentDeleted):
		httputil.WriteConflict(w, "Comment has been deleted")
	case errors.Is(err, model.ErrContentRequired):
		httputil.WriteBadRequest(w, "Comment content is required")
	case errors.Is(err, model.ErrContentTooLong):
		httputil.WriteBadRequest(w, "Comment must be at most 255 characters")
	case errors.Is(err, model.ErrInvalidParent), errors.Is(err, model.ErrInvalidDepth):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, model.ErrNotCommentOwner):
		httputil.WriteForbidden(w, "You can only change your own comments")
	default:
		log.Printf("[ERROR] %s handler: post=%d err=%v", op, postID, err)
		httputil.WriteInternalError(w, "Failed to process comment")
	}
}
