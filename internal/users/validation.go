package users

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"notesbuzz/internal/apperr"
)

const (
	minPasswordLength = 6
	// bcrypt only hashes the first 72 bytes and rejects anything longer.
	maxPasswordBytes = 72
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// FieldError is one failed rule on one input field.
type FieldError struct {
	Param string `json:"param"`
	Msg   string `json:"msg"`
}

// ValidationErrors lists every rule a signup request broke. It matches
// apperr.ErrInvalidInput under errors.Is.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Param, fe.Msg))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (v ValidationErrors) Is(target error) bool {
	return target == apperr.ErrInvalidInput
}

// ValidEmail reports whether email is syntactically an address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func validate(username, email, password string) error {
	var errs ValidationErrors
	if username == "" {
		errs = append(errs, FieldError{Param: "username", Msg: "Username is required"})
	}
	if !ValidEmail(email) {
		errs = append(errs, FieldError{Param: "email", Msg: "Valid email is required"})
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs = append(errs, FieldError{
			Param: "password",
			Msg:   fmt.Sprintf("Password must be at least %d characters long", minPasswordLength),
		})
	}
	if len(password) > maxPasswordBytes {
		errs = append(errs, FieldError{
			Param: "password",
			Msg:   fmt.Sprintf("Password must be at most %d bytes long", maxPasswordBytes),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
