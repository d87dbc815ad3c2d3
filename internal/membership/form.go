// Package membership implements the registration form and the login and
// logout flows of the web client.
package membership

import (
	"context"
	"errors"
	"log"
	"sync"

	"bulletinboard/internal/model"
	"bulletinboard/internal/validation"
)

var (
	ErrFormInvalid      = errors.New("registration form is invalid")
	ErrRegisterFailed   = errors.New("registration failed")
	ErrEmailCheckFailed = errors.New("email availability check failed")
)

// Registration notices
const (
	NoticeRegistered     = "Registration complete."
	NoticeRegisterFailed = "An error occurred during registration."
	NoticeEmailCheckFail = "An error occurred while checking the email."
)

// Registry is the part of the forum API registration needs.
type Registry interface {
	CheckNickname(ctx context.Context, nickname string) (bool, error)
	CheckEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, req model.RegisterRequest) (bool, error)
}

// Feedback is a message shown next to a field. An empty Message means
// nothing changed.
type Feedback struct {
	Message string `json:"message"`
	OK      bool   `json:"ok"`
}

func feedback(key validation.Key, ok bool) Feedback {
	return Feedback{Message: validation.Message(key), OK: ok}
}

// Form is one registration in progress. Field events mirror the browser
// events of the page (input, blur, button click) so that availability checks
// run only when a value actually changed.
type Form struct {
	mu sync.Mutex

	nickname        string
	email           string
	password        string
	passwordConfirm string
	phone           string
	zipCode         string
	addressBase     string
	addressDetail   string
	addressExtra    string

	nicknameValid   bool
	emailValid      bool
	checkedNickname string
	checkedEmail    string
	checkedPassword string
	checkedMatchPw  string
	checkedConfirm  string
	checkedPhone    string
}

func NewForm() *Form {
	return &Form{}
}

// InputNickname filters the typed value and returns it with any length
// message.
func (f *Form) InputNickname(value string) (string, Feedback) {
	f.mu.Lock()
	defer f.mu.Unlock()

	filtered := validation.FilterNickname(value)
	f.nickname = filtered

	if filtered != "" && !validation.IsValidNicknameLength(filtered) {
		f.nicknameValid = false
		return filtered, feedback(validation.NicknameLength, false)
	}
	if filtered != f.checkedNickname {
		f.nicknameValid = false
	}
	return filtered, Feedback{}
}

// BlurNickname checks availability of a nickname that changed since the
// last check. A failed call counts as unavailable.
func (f *Form) BlurNickname(ctx context.Context, r Registry) Feedback {
	f.mu.Lock()
	nickname := f.nickname
	if nickname == "" || nickname == f.checkedNickname || !validation.IsValidNicknameLength(nickname) {
		f.mu.Unlock()
		return Feedback{}
	}
	f.checkedNickname = nickname
	f.mu.Unlock()

	ok, err := r.CheckNickname(ctx, nickname)
	if err != nil {
		log.Printf("[Membership] Nickname check failed: nickname=%s, error=%v", nickname, err)
		ok = false
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nickname == nickname {
		f.nicknameValid = ok
	}
	if ok {
		return feedback(validation.NicknameValid, true)
	}
	return feedback(validation.NicknameInvalid, false)
}

// InputEmail records the email; changing it invalidates a previous check.
func (f *Form) InputEmail(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = value
	if value != f.checkedEmail {
		f.emailValid = false
	}
}

// CheckEmail asks the API whether the current email is available.
func (f *Form) CheckEmail(ctx context.Context, r Registry) (Feedback, error) {
	f.mu.Lock()
	email := f.email
	f.mu.Unlock()

	if email == "" {
		return feedback(validation.EmailEmpty, false), nil
	}

	ok, err := r.CheckEmail(ctx, email)
	if err != nil {
		log.Printf("[Membership] Email check failed: error=%v", err)
		return Feedback{Message: NoticeEmailCheckFail}, ErrEmailCheckFailed
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.email != email {
		return Feedback{}, nil
	}
	f.emailValid = ok
	if ok {
		f.checkedEmail = email
		return feedback(validation.EmailAvailable, true), nil
	}
	f.checkedEmail = ""
	return feedback(validation.EmailUnavailable, false), nil
}

func (f *Form) InputPassword(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = value
}

func (f *Form) InputPasswordConfirm(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.passwordConfirm = value
}

// BlurPassword reports the password rule once per distinct password.
func (f *Form) BlurPassword() Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.password == "" || f.password == f.checkedPassword {
		return Feedback{}
	}
	f.checkedPassword = f.password
	if validation.IsValidPassword(f.password) {
		return feedback(validation.PasswordValid, true)
	}
	return feedback(validation.PasswordInvalid, false)
}

// BlurPasswordConfirm reports whether the two passwords match, once per
// distinct pair.
func (f *Form) BlurPasswordConfirm() Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.passwordConfirm == "" {
		return Feedback{}
	}
	if f.password == f.checkedMatchPw && f.passwordConfirm == f.checkedConfirm {
		return Feedback{}
	}
	f.checkedMatchPw = f.password
	f.checkedConfirm = f.passwordConfirm
	if validation.IsPasswordMatch(f.password, f.passwordConfirm) {
		return feedback(validation.PasswordMatch, true)
	}
	return feedback(validation.PasswordNotMatch, false)
}

// InputPhone formats the typed number and returns the formatted value.
func (f *Form) InputPhone(value string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.phone = validation.FormatPhone(value)
	return f.phone
}

// BlurPhone reports the phone rule once per distinct number.
func (f *Form) BlurPhone() Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phone == "" || f.phone == f.checkedPhone {
		return Feedback{}
	}
	f.checkedPhone = f.phone
	if validation.IsValidPhone(f.phone) {
		return feedback(validation.PhoneValid, true)
	}
	return feedback(validation.PhoneInvalid, false)
}

// SetAddress records the address picked by the address search.
func (f *Form) SetAddress(zipCode, base, detail, extra string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zipCode = zipCode
	f.addressBase = base
	f.addressDetail = detail
	f.addressExtra = extra
}

// Validate returns every problem with the form, in display order.
func (f *Form) Validate() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.validateLocked()
}

func (f *Form) validateLocked() []string {
	var errs []string
	add := func(key validation.Key) {
		errs = append(errs, validation.Message(key))
	}

	if f.nickname == "" {
		add(validation.NicknameEmpty)
	} else if !f.nicknameValid {
		add(validation.NicknameInvalid)
	}
	if f.email == "" {
		add(validation.EmailEmpty)
	}
	if f.password == "" {
		add(validation.PasswordEmpty)
	}
	if f.passwordConfirm == "" {
		add(validation.PasswordConfirmEmpty)
	}
	if f.phone == "" {
		add(validation.PhoneEmpty)
	}
	if f.zipCode == "" {
		add(validation.AddressEmpty)
	}
	if f.email != "" && !f.emailValid {
		add(validation.EmailUnchecked)
	}
	if f.password != "" && !validation.IsValidPassword(f.password) {
		add(validation.PasswordInvalid)
	}
	if f.password != "" && f.passwordConfirm != "" && !validation.IsPasswordMatch(f.password, f.passwordConfirm) {
		add(validation.PasswordNotMatch)
	}
	if f.phone != "" && !validation.IsValidPhone(f.phone) {
		add(validation.PhoneInvalid)
	}
	return errs
}

// Request is the body sent to the registration endpoint.
func (f *Form) Request() model.RegisterRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requestLocked()
}

func (f *Form) requestLocked() model.RegisterRequest {
	return model.RegisterRequest{
		Nickname:      f.nickname,
		Email:         f.email,
		Password:      f.password,
		PhoneNumber:   f.phone,
		ZipCode:       f.zipCode,
		AddressBase:   f.addressBase,
		AddressDetail: f.addressDetail,
		AddressExtra:  f.addressExtra,
	}
}

// Submit validates the form and registers the member. Validation problems
// are returned as a *FormError.
func (f *Form) Submit(ctx context.Context, r Registry) error {
	f.mu.Lock()
	if errs := f.validateLocked(); len(errs) > 0 {
		f.mu.Unlock()
		return &FormError{Problems: errs}
	}
	req := f.requestLocked()
	f.mu.Unlock()

	ok, err := r.Register(ctx, req)
	if err != nil {
		log.Printf("[Membership] Register failed: nickname=%s, error=%v", req.Nickname, err)
		return ErrRegisterFailed
	}
	if !ok {
		return ErrRegisterFailed
	}
	log.Printf("[Membership] Registered: nickname=%s", req.Nickname)
	return nil
}

// FormError lists the validation problems of a rejected submission.
type FormError struct {
	Problems []string
}

func (e *FormError) Error() string {
	return ErrFormInvalid.Error()
}

func (e *FormError) Is(target error) bool {
	return target == ErrFormInvalid
}
