package membership

import (
	"context"
	"errors"
	"testing"

	"bulletinboard/internal/gateway"
	"bulletinboard/internal/model"
	"bulletinboard/internal/validation"
)

type mockRegistry struct {
	checkNicknameFn func(ctx context.Context, nickname string) (bool, error)
	checkEmailFn    func(ctx context.Context, email string) (bool, error)
	registerFn      func(ctx context.Context, req model.RegisterRequest) (bool, error)

	nicknameCalls int
	registerCalls int
}

func (m *mockRegistry) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	m.nicknameCalls++
	if m.checkNicknameFn != nil {
		return m.checkNicknameFn(ctx, nickname)
	}
	return true, nil
}

func (m *mockRegistry) CheckEmail(ctx context.Context, email string) (bool, error) {
	if m.checkEmailFn != nil {
		return m.checkEmailFn(ctx, email)
	}
	return true, nil
}

func (m *mockRegistry) Register(ctx context.Context, req model.RegisterRequest) (bool, error) {
	m.registerCalls++
	if m.registerFn != nil {
		return m.registerFn(ctx, req)
	}
	return true, nil
}

func filledForm(t *testing.T, r Registry) *Form {
	t.Helper()
	ctx := context.Background()
	f := NewForm()
	f.InputNickname("alice")
	f.BlurNickname(ctx, r)
	f.InputEmail("alice@example.com")
	if _, err := f.CheckEmail(ctx, r); err != nil {
		t.Fatal(err)
	}
	f.InputPassword("abc123!@")
	f.InputPasswordConfirm("abc123!@")
	f.InputPhone("01012345678")
	f.SetAddress("12345", "Main St 1", "Apt 2", "")
	return f
}

func TestInputNickname(t *testing.T) {
	f := NewForm()

	got, fb := f.InputNickname("al ice!")
	if got != "alice" || fb.Message != "" {
		t.Errorf("InputNickname = %q, %+v", got, fb)
	}

	got, fb = f.InputNickname("abcdefghijk")
	if got != "abcdefghijk" || fb.Message != validation.Message(validation.NicknameLength) || fb.OK {
		t.Errorf("too long: %q, %+v", got, fb)
	}
}

func TestBlurNickname_ChecksOncePerValue(t *testing.T) {
	r := &mockRegistry{}
	f := NewForm()
	ctx := context.Background()

	if fb := f.BlurNickname(ctx, r); fb.Message != "" || r.nicknameCalls != 0 {
		t.Errorf("empty nickname checked: %+v", fb)
	}

	f.InputNickname("alice")
	if fb := f.BlurNickname(ctx, r); !fb.OK || fb.Message != validation.Message(validation.NicknameValid) {
		t.Errorf("first blur = %+v", fb)
	}
	f.BlurNickname(ctx, r)
	if r.nicknameCalls != 1 {
		t.Errorf("nicknameCalls = %d, want 1", r.nicknameCalls)
	}

	f.InputNickname("abcdefghijk")
	f.BlurNickname(ctx, r)
	if r.nicknameCalls != 1 {
		t.Errorf("too-long nickname was checked")
	}
}

func TestBlurNickname_ErrorCountsAsUnavailable(t *testing.T) {
	r := &mockRegistry{
		checkNicknameFn: func(ctx context.Context, nickname string) (bool, error) {
			return false, gateway.ErrNetwork
		},
	}
	f := NewForm()
	f.InputNickname("alice")

	if fb := f.BlurNickname(context.Background(), r); fb.OK || fb.Message != validation.Message(validation.NicknameInvalid) {
		t.Errorf("feedback = %+v", fb)
	}
}

func TestEmailChangeInvalidatesCheck(t *testing.T) {
	f := filledForm(t, &mockRegistry{})
	if errs := f.Validate(); len(errs) != 0 {
		t.Fatalf("Validate() = %v, want none", errs)
	}

	f.InputEmail("other@example.com")
	errs := f.Validate()
	if len(errs) != 1 || errs[0] != validation.Message(validation.EmailUnchecked) {
		t.Errorf("Validate() = %v", errs)
	}
}

func TestCheckEmail_Empty(t *testing.T) {
	fb, err := NewForm().CheckEmail(context.Background(), &mockRegistry{})
	if err != nil || fb.Message != validation.Message(validation.EmailEmpty) {
		t.Errorf("CheckEmail = %+v, %v", fb, err)
	}
}

func TestCheckEmail_Failure(t *testing.T) {
	r := &mockRegistry{
		checkEmailFn: func(ctx context.Context, email string) (bool, error) {
			return false, gateway.ErrNetwork
		},
	}
	f := NewForm()
	f.InputEmail("a@b.com")
	fb, err := f.CheckEmail(context.Background(), r)
	if !errors.Is(err, ErrEmailCheckFailed) || fb.Message != NoticeEmailCheckFail {
		t.Errorf("CheckEmail = %+v, %v", fb, err)
	}
}

func TestPasswordBlur(t *testing.T) {
	f := NewForm()
	f.InputPassword("abcdefgh")
	if fb := f.BlurPassword(); fb.OK || fb.Message != validation.Message(validation.PasswordInvalid) {
		t.Errorf("weak password feedback = %+v", fb)
	}
	if fb := f.BlurPassword(); fb.Message != "" {
		t.Errorf("repeat blur feedback = %+v", fb)
	}

	f.InputPassword("abc123!@")
	f.InputPasswordConfirm("abc123!#")
	if fb := f.BlurPasswordConfirm(); fb.OK || fb.Message != validation.Message(validation.PasswordNotMatch) {
		t.Errorf("mismatch feedback = %+v", fb)
	}
	f.InputPasswordConfirm("abc123!@")
	if fb := f.BlurPasswordConfirm(); !fb.OK {
		t.Errorf("match feedback = %+v", fb)
	}
}

func TestPhone(t *testing.T) {
	f := NewForm()
	if got := f.InputPhone("010-1234-5678 "); got != "010-1234-5678" {
		t.Errorf("InputPhone = %q", got)
	}
	if fb := f.BlurPhone(); !fb.OK {
		t.Errorf("BlurPhone = %+v", fb)
	}
	f.InputPhone("0101")
	if fb := f.BlurPhone(); fb.OK || fb.Message != validation.Message(validation.PhoneInvalid) {
		t.Errorf("short phone BlurPhone = %+v", fb)
	}
}

func TestValidate_Order(t *testing.T) {
	f := NewForm()
	f.InputEmail("a@b.com")
	f.InputPassword("short")

	want := []string{
		validation.Message(validation.NicknameEmpty),
		validation.Message(validation.PasswordConfirmEmpty),
		validation.Message(validation.PhoneEmpty),
		validation.Message(validation.AddressEmpty),
		validation.Message(validation.EmailUnchecked),
		validation.Message(validation.PasswordInvalid),
	}
	got := f.Validate()
	if len(got) != len(want) {
		t.Fatalf("Validate() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("problem %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSubmit(t *testing.T) {
	var sent model.RegisterRequest
	r := &mockRegistry{
		registerFn: func(ctx context.Context, req model.RegisterRequest) (bool, error) {
			sent = req
			return true, nil
		},
	}
	f := filledForm(t, r)

	if err := f.Submit(context.Background(), r); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if sent.Nickname != "alice" || sent.PhoneNumber != "010-1234-5678" || sent.ZipCode != "12345" {
		t.Errorf("request = %+v", sent)
	}
	if err := validation.Struct(sent); err != nil {
		t.Errorf("request fails struct validation: %v", err)
	}
}

func TestSubmit_InvalidFormMakesNoCall(t *testing.T) {
	r := &mockRegistry{}
	err := NewForm().Submit(context.Background(), r)

	var formErr *FormError
	if !errors.As(err, &formErr) || !errors.Is(err, ErrFormInvalid) {
		t.Fatalf("error = %v, want *FormError", err)
	}
	if len(formErr.Problems) == 0 || r.registerCalls != 0 {
		t.Errorf("problems = %v, registerCalls = %d", formErr.Problems, r.registerCalls)
	}
}

func TestSubmit_Rejected(t *testing.T) {
	r := &mockRegistry{
		registerFn: func(ctx context.Context, req model.RegisterRequest) (bool, error) {
			return false, nil
		},
	}
	if err := filledForm(t, r).Submit(context.Background(), r); !errors.Is(err, ErrRegisterFailed) {
		t.Errorf("error = %v, want ErrRegisterFailed", err)
	}
}
