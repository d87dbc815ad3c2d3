package web

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bulletinboard/internal/httputil"
	"bulletinboard/internal/membership"
)

const rememberMaxAge = 30 * 24 * time.Hour

type loginPage struct {
	Email    string
	Remember bool
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if currentSession(r).Authenticated {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := loginPage{}
	if c, err := r.Cookie(rememberCookie); err == nil && c.Value != "" {
		data.Email = c.Value
		data.Remember = true
	}
	s.render(w, r, "login.html", "Login", data)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := currentSession(r)
	email := r.PostFormValue("email")

	identity, err := membership.Login(ctx, s.api, email, r.PostFormValue("password"))
	if err != nil {
		s.redirectWith(w, r, "/login", membership.NoticeLoginFailed)
		return
	}

	if r.PostFormValue("remember") != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     rememberCookie,
			Value:    email,
			Path:     "/",
			MaxAge:   int(rememberMaxAge.Seconds()),
			HttpOnly: true,
			Secure:   s.opts.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	} else {
		http.SetCookie(w, &http.Cookie{Name: rememberCookie, Path: "/", MaxAge: -1})
	}

	// Open pages were built for the anonymous viewer.
	s.pages.DropOwner(sess.ID)
	s.forms.DropOwner(sess.ID)

	if err := s.store.Login(ctx, sess.ID, identity); err != nil {
		log.Printf("[Web] Session login failed: session=%s, error=%v", sess.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	log.Printf("[Web] Logged in: session=%s, user=%s", sess.ID, identity.Username)
	s.redirectWith(w, r, "/", membership.NoticeLoggedIn)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sess := currentSession(r)

	s.pages.DropOwner(sess.ID)
	if err := membership.Logout(ctx, s.api.WithToken(sess.Token), s.store, sess.ID); err != nil {
		log.Printf("[Web] Session logout failed: session=%s, error=%v", sess.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	s.redirectWith(w, r, "/", membership.NoticeLoggedOut)
}

type registerPage struct {
	FormID   string
	Problems []string
	Values   registerValues
}

type registerValues struct {
	Nickname      string
	Email         string
	Phone         string
	ZipCode       string
	AddressBase   string
	AddressDetail string
	AddressExtra  string
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	formID := s.forms.Put(sess.ID, membership.NewForm())
	s.render(w, r, "register.html", "Register", registerPage{FormID: formID})
}

// handleRegister copies the posted fields into the form and submits. A
// nickname that changed is checked here; a changed email has to go through
// the availability check again.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form := currentForm(r)
	formID := chi.URLParam(r, "formID")

	if err := r.ParseForm(); err != nil {
		httputil.WriteBadRequest(w, "Invalid form")
		return
	}
	if nickname := r.PostForm.Get("nickname"); nickname != form.Request().Nickname {
		form.InputNickname(nickname)
		form.BlurNickname(r.Context(), s.api)
	}
	if email := r.PostForm.Get("email"); email != form.Request().Email {
		form.InputEmail(email)
	}
	form.InputPassword(r.PostForm.Get("password"))
	form.InputPasswordConfirm(r.PostForm.Get("passwordConfirm"))
	form.InputPhone(r.PostForm.Get("phone"))
	form.SetAddress(
		r.PostForm.Get("zipCode"),
		r.PostForm.Get("addressBase"),
		r.PostForm.Get("addressDetail"),
		r.PostForm.Get("addressExtra"),
	)

	err := form.Submit(r.Context(), s.api)
	if err == nil {
		s.forms.Delete(formID)
		s.redirectWith(w, r, "/login", membership.NoticeRegistered)
		return
	}

	data := registerPage{FormID: formID, Values: valuesOf(form)}
	var ferr *membership.FormError
	if errors.As(err, &ferr) {
		data.Problems = ferr.Problems
	} else {
		data.Problems = []string{membership.NoticeRegisterFailed}
	}
	s.render(w, r, "register.html", "Register", data)
}

func valuesOf(f *membership.Form) registerValues {
	req := f.Request()
	return registerValues{
		Nickname:      req.Nickname,
		Email:         req.Email,
		Phone:         req.PhoneNumber,
		ZipCode:       req.ZipCode,
		AddressBase:   req.AddressBase,
		AddressDetail: req.AddressDetail,
		AddressExtra:  req.AddressExtra,
	}
}

// fieldEvent is an input or blur on one registration field.
type fieldEvent struct {
	Event   string `json:"event"` // "input", "blur" or "check"
	Value   string `json:"value"`
	Confirm bool   `json:"confirm,omitempty"`
}

type fieldResult struct {
	Value    string              `json:"value"`
	Feedback membership.Feedback `json:"feedback"`
}

func (s *Server) handleNicknameField(w http.ResponseWriter, r *http.Request) {
	form := currentForm(r)
	var ev fieldEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	switch ev.Event {
	case "input":
		value, fb := form.InputNickname(ev.Value)
		httputil.WriteJSON(w, http.StatusOK, fieldResult{Value: value, Feedback: fb})
	case "blur":
		fb := form.BlurNickname(r.Context(), s.api)
		httputil.WriteJSON(w, http.StatusOK, fieldResult{Value: form.Request().Nickname, Feedback: fb})
	default:
		httputil.WriteBadRequest(w, "Unknown event")
	}
}

func (s *Server) handleEmailField(w http.ResponseWriter, r *http.Request) {
	form := currentForm(r)
	var ev fieldEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	switch ev.Event {
	case "input":
		form.InputEmail(ev.Value)
		httputil.WriteJSON(w, http.StatusOK, fieldResult{Value: ev.Value})
	case "check":
		form.InputEmail(ev.Value)
		fb, err := form.CheckEmail(r.Context(), s.api)
		if errors.Is(err, membership.ErrEmailCheckFailed) {
			writeJSONError(w, http.StatusBadGateway, "EMAIL_CHECK_FAILED", fb.Message)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, fieldResult{Value: ev.Value, Feedback: fb})
	default:
		httputil.WriteBadRequest(w, "Unknown event")
	}
}

// handlePasswordField serves both password inputs; Confirm selects the
// confirmation field.
func (s *Server) handlePasswordField(w http.ResponseWriter, r *http.Request) {
	form := currentForm(r)
	var ev fieldEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	var fb membership.Feedback
	switch {
	case ev.Event == "input" && ev.Confirm:
		form.InputPasswordConfirm(ev.Value)
	case ev.Event == "input":
		form.InputPassword(ev.Value)
	case ev.Event == "blur" && ev.Confirm:
		fb = form.BlurPasswordConfirm()
	case ev.Event == "blur":
		fb = form.BlurPassword()
	default:
		httputil.WriteBadRequest(w, "Unknown event")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fieldResult{Feedback: fb})
}

func (s *Server) handlePhoneField(w http.ResponseWriter, r *http.Request) {
	form := currentForm(r)
	var ev fieldEvent
	if err := decodeJSON(w, r, &ev); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	switch ev.Event {
	case "input":
		httputil.WriteJSON(w, http.StatusOK, fieldResult{Value: form.InputPhone(ev.Value)})
	case "blur":
		fb := form.BlurPhone()
		httputil.WriteJSON(w, http.StatusOK, fieldResult{Value: form.Request().PhoneNumber, Feedback: fb})
	default:
		httputil.WriteBadRequest(w, "Unknown event")
	}
}
