package domain

import (
	"regexp"
	"strings"

	"github.com/hzj010427/YACA/pkg/response"
)

var (
	emailRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	passwordLetter   = regexp.MustCompile(`[a-zA-Z]`)
	passwordDigit    = regexp.MustCompile(`[0-9]`)
	passwordSpecial  = regexp.MustCompile(`[$%#@!*&~^+-]`)
	passwordAlphabet = regexp.MustCompile(`^[a-zA-Z0-9$%#@!*&~^+-]+$`)
)

// ValidateRegistration checks a registration request field by field. It fails
// fast, before any storage access, and returns a client error naming the
// first invalid field. Password rule failures are itemized in one message.
func ValidateRegistration(req *RegisterRequest) error {
	if err := ValidateCredentialsPresent(&req.Credentials); err != nil {
		return err
	}
	if req.Extra == "" {
		return response.NewClientError("MissingDisplayName", "Missing required information: name")
	}
	if !emailRegex.MatchString(req.Credentials.Username) {
		return response.NewClientError("InvalidEmail", "Invalid email address")
	}
	return validatePasswordFormat(req.Credentials.Password)
}

// ValidateCredentialsPresent checks that both credential fields are supplied.
func ValidateCredentialsPresent(creds *Credentials) error {
	if creds.Username == "" {
		return response.NewClientError("MissingUsername", "Missing required information: email")
	}
	if creds.Password == "" {
		return response.NewClientError("MissingPassword", "Missing required information: password")
	}
	return nil
}

func validatePasswordFormat(password string) error {
	var errs []string
	if len(password) < 4 {
		errs = append(errs, "Password must be at least 4 characters long.")
	}
	if !passwordLetter.MatchString(password) {
		errs = append(errs, "Password must contain at least one letter character.")
	}
	if !passwordDigit.MatchString(password) {
		errs = append(errs, "Password must contain at least one number.")
	}
	if !passwordSpecial.MatchString(password) {
		errs = append(errs, "Password must contain at least one special character ($%#@!*&~^+-).")
	}
	if !passwordAlphabet.MatchString(password) {
		errs = append(errs, "Password must contain only valid characters.")
	}

	if len(errs) > 0 {
		return response.NewClientError("InvalidPassword", strings.Join(errs, "\n"))
	}
	return nil
}
