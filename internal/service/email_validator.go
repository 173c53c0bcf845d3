package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// mailboxPattern accepts local@domain.tld: one @, no whitespace, a dot inside the domain.
var mailboxPattern = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)

// IsValidEmail reports whether address has the local@domain.tld shape.
func IsValidEmail(address string) bool {
	return mailboxPattern.MatchString(address)
}

// RegisterMailboxValidation adds the "mailbox" tag to v.
func RegisterMailboxValidation(v *validator.Validate) error {
	return v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return IsValidEmail(fl.Field().String())
	})
}

// NewValidator returns a validator with the relay's custom rules registered.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := RegisterMailboxValidation(v); err != nil {
		panic(err)
	}
	return v
}
