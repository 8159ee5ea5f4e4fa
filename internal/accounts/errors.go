package accounts

import (
	"errors"
	"sort"
	"strings"

	"USER_REGISTRATION_BACK-END/internal/dto"
)

var (
	ErrMissingCredentials    = errors.New("must include username and password")
	ErrInvalidCredentials    = errors.New("unable to log in with provided credentials")
	ErrInactiveUser          = errors.New("user account is disabled")
	ErrEmailNotVerified      = errors.New("e-mail is not verified")
	ErrConfirmationInvalid   = errors.New("unknown confirmation key")
	ErrConfirmationExpired   = errors.New("confirmation key has expired")
	ErrSocialEmailMissing    = errors.New("social account has no e-mail address")
	ErrSocialEmailUnverified = errors.New("social account e-mail is not verified")
)

// Validation messages shared by the registration and update flows.
const (
	msgRequired         = "This field is required."
	msgBlank            = "This field may not be blank."
	msgUsernameInvalid  = "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	msgUsernameTaken    = "A user is already registered with this username."
	msgEmailInvalid     = "Enter a valid email address."
	msgEmailTaken       = "A user is already registered with this e-mail address."
	msgPasswordMismatch = "The two password fields didn't match."
	msgOldPassword      = "Your old password was entered incorrectly. Please enter it again."
	msgDateFormat       = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgIntegerInvalid   = "A valid integer is required."
	msgDetailsProblem   = "Problem while creating user details "
)

// ValidationError collects user-facing messages keyed by field name.
// Nested fields use dotted keys (user_details.mobile_no); messages that
// concern the payload as a whole are stored under dto.NonFieldErrors.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Add(field string, msgs ...string) {
	if len(msgs) == 0 {
		return
	}
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msgs...)
}

func (e *ValidationError) AddNonField(msg string) {
	e.Add(dto.NonFieldErrors, msg)
}

func (e *ValidationError) Merge(fields map[string][]string) {
	for k, msgs := range fields {
		e.Add(k, msgs...)
	}
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

// Err returns e when it holds messages and nil otherwise.
func (e *ValidationError) Err() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.Add(field, msg)
	return e
}

func nonFieldError(msg string) *ValidationError {
	e := &ValidationError{}
	e.AddNonField(msg)
	return e
}
