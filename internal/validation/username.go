package validation

import (
	"errors"
	"regexp"
	"strings"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// ValidateUsername validates the public handle used in profile URLs.
func ValidateUsername(username string) error {
	if username == "" {
		return errors.New("username is required")
	}

	if !usernamePattern.MatchString(username) {
		return errors.New("username must be 3-30 characters of lowercase letters, digits, or underscores")
	}

	return nil
}

// ValidateDisplayName validates the display name shown on profiles and chats.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("display name is required")
	}

	if len(trimmed) > 100 {
		return errors.New("display name is too long (max 100 characters)")
	}

	return nil
}
