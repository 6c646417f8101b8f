package validation

import (
	"errors"
	"net/mail"
)

// ValidateEmail checks basic RFC 5322 shape and the 254-character
// total length cap from RFC 5321.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if len(email) > 254 {
		return errors.New("email address is too long (max 254 characters)")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email address format")
	}
	return nil
}
