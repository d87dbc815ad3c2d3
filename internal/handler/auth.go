package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/model"
	"bulletinboard/internal/service"
	"bulletinboard/internal/transport/http/middleware"
)

// AuthHandler groups the login, logout and session endpoints.
type AuthHandler struct {
	userService  *service.UserService
	authService  *service.AuthService
	secureCookie bool
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		authService:  authService,
		secureCookie: secureCookie,
	}
}

// Login handles POST /login
// The token is returned in the body and as a cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Email and password are required")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		log.Printf("[ERROR] Login handler: err=%v", err)
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		log.Printf("[ERROR] Login handler: user=%d err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Failed to generate token")
		return
	}

	maxAge := int(h.authService.MaxAge().Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		Success:     true,
		Username:    strconv.FormatInt(user.ID, 10),
		Nickname:    user.Nickname,
		AccessToken: token,
		ExpiresIn:   maxAge,
	})
}

// Logout handles GET /logout
// The current token is revoked when one was sent. Logging out twice is fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := middleware.GetClaimsFromContext(r.Context()); ok {
		if err := h.authService.Revoke(r.Context(), claims); err != nil {
			log.Printf("[ERROR] Logout handler: user=%d err=%v", claims.UserID, err)
			httputil.WriteInternalError(w, "Failed to logout")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me handles GET /auth/me
// Username is the caller's decimal user id.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteJSON(w, http.StatusOK, model.MeResponse{Authenticated: false})
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteJSON(w, http.StatusOK, model.MeResponse{Authenticated: false})
			return
		}
		httputil.WriteInternalError(w, "Failed to get user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.MeResponse{
		Authenticated: true,
		Username:      strconv.FormatInt(user.ID, 10),
		Nickname:      user.Nickname,
	})
}
