package validation

// Key names a rule outcome in the message table.
type Key string

const (
	NicknameEmpty        Key = "NICKNAME_EMPTY"
	NicknameLength       Key = "NICKNAME_LENGTH"
	NicknameInvalid      Key = "NICKNAME_INVALID"
	NicknameValid        Key = "NICKNAME_VALID"
	EmailEmpty           Key = "EMAIL_EMPTY"
	EmailUnchecked       Key = "EMAIL_UNCHECKED"
	EmailAvailable       Key = "EMAIL_AVAILABLE"
	EmailUnavailable     Key = "EMAIL_UNAVAILABLE"
	PasswordEmpty        Key = "PASSWORD_EMPTY"
	PasswordValid        Key = "PASSWORD_VALID"
	PasswordInvalid      Key = "PASSWORD_INVALID"
	PasswordConfirmEmpty Key = "PASSWORD_CONFIRM_EMPTY"
	PasswordMatch        Key = "PASSWORD_MATCH"
	PasswordNotMatch     Key = "PASSWORD_NOT_MATCH"
	PhoneEmpty           Key = "PHONE_EMPTY"
	PhoneValid           Key = "PHONE_VALID"
	PhoneInvalid         Key = "PHONE_INVALID"
	AddressEmpty         Key = "ADDRESS_EMPTY"
)

// Messages is the user-facing text for each rule outcome.
var Messages = map[Key]string{
	NicknameEmpty:        "Please enter a nickname.",
	NicknameLength:       "Up to 10 characters are allowed.",
	NicknameInvalid:      "This nickname is not available.",
	NicknameValid:        "This nickname is available.",
	EmailEmpty:           "Please enter an email address.",
	EmailUnchecked:       "Please check whether the email is available.",
	EmailAvailable:       "This email is available.",
	EmailUnavailable:     "This email is not available.",
	PasswordEmpty:        "Please enter a password.",
	PasswordValid:        "This password can be used.",
	PasswordInvalid:      "Passwords must be 8-15 characters and include a number and a symbol.",
	PasswordConfirmEmpty: "Please confirm the password.",
	PasswordMatch:        "The passwords match.",
	PasswordNotMatch:     "The passwords do not match.",
	PhoneEmpty:           "Please enter a mobile phone number.",
	PhoneValid:           "This phone number can be used.",
	PhoneInvalid:         "This phone number is not valid.",
	AddressEmpty:         "Please enter an address.",
}

// Message returns the text for key.
func Message(key Key) string {
	return Messages[key]
}
