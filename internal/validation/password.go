package validation

import (
	"errors"
	"strings"
)

var weakSubstrings = []string{
	"password", "123456", "qwerty", "admin", "letmein",
	"welcome", "monkey", "dragon", "master", "sunshine",
}

// ValidatePassword enforces a 12-character minimum, the 72-byte bcrypt
// input limit, and rejects passwords built on common substrings.
func ValidatePassword(password string) error {
	if len(password) < 12 {
		return errors.New("password must be at least 12 characters")
	}
	if len(password) > 72 {
		return errors.New("password must not exceed 72 characters")
	}

	lower := strings.ToLower(password)
	for _, weak := range weakSubstrings {
		if strings.Contains(lower, weak) {
			return errors.New("password is too common, please choose a stronger one")
		}
	}
	return nil
}
