package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/model"
	"bulletinboard/internal/service"
)

// UserHandler serves registration and the availability checks of the
// registration page.
type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register handles POST /register
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	req.Email = strings.TrimSpace(req.Email)

	_, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		var verr *service.ValidationError
		switch {
		case errors.As(err, &verr):
			httputil.WriteValidationError(w, verr.Message)
		case errors.Is(err, model.ErrNicknameExists):
			httputil.WriteConflict(w, "Nickname already exists")
		case errors.Is(err, model.ErrEmailExists):
			httputil.WriteConflict(w, "Email already exists")
		default:
			log.Printf("[ERROR] Register handler: nickname=%s err=%v", req.Nickname, err)
			httputil.WriteInternalError(w, "Failed to register")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.RegisterResponse{Success: true})
}

// NicknameCheck handles GET /nicknameCheck?nickname=
func (h *UserHandler) NicknameCheck(w http.ResponseWriter, r *http.Request) {
	ok, err := h.userService.NicknameAvailable(r.Context(), r.URL.Query().Get("nickname"))
	if err != nil {
		log.Printf("[ERROR] Nickname check handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to check nickname")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.RegisterResponse{Success: ok})
}

// EmailCheck handles GET /emailCheck?email=
func (h *UserHandler) EmailCheck(w http.ResponseWriter, r *http.Request) {
	ok, err := h.userService.EmailAvailable(r.Context(), strings.TrimSpace(r.URL.Query().Get("email")))
	if err != nil {
		log.Printf("[ERROR] Email check handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to check email")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.RegisterResponse{Success: ok})
}
