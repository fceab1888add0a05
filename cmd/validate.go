package cmd

import (
	"errors"
	"regexp"
	"unicode/utf8"

	"github.com/samber/oops"
)

const (
	minNameLength     = 4
	minPasswordLength = 6
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,4}$`)

// validateRegistration applies the registration form rules and reports every failing field.
func validateRegistration(name, email, password string) error {
	var errs []error
	if utf8.RuneCountInString(name) < minNameLength {
		errs = append(errs, oops.Code("FORM_INVALID").With("field", "name").
			Errorf("name must be at least %d characters", minNameLength))
	}
	if !emailPattern.MatchString(email) {
		errs = append(errs, oops.Code("FORM_INVALID").With("field", "email").
			Errorf("email must be a valid lowercase address"))
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		errs = append(errs, oops.Code("FORM_INVALID").With("field", "password").
			Errorf("password must be at least %d characters", minPasswordLength))
	}
	return errors.Join(errs...)
}
