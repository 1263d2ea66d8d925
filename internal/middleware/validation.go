package middleware

import (
	"errors"
	"net/mail"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ValidateEmail validates an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email cannot be empty")
	}
	if len(email) > 254 {
		return errors.New("email exceeds maximum length")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email format")
	}
	return nil
}

// ValidatePassword validates a password.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if len(password) > 72 { // bcrypt input limit
		return errors.New("password exceeds maximum length")
	}
	return nil
}

// ValidateID validates an entity ID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid ID format")
	}
	return nil
}

// ValidateMessageText validates chat message text.
func ValidateMessageText(text string) error {
	if len(text) == 0 {
		return errors.New("message text cannot be empty")
	}
	if len(text) > 10000 {
		return errors.New("message text exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("message text must be valid UTF-8")
	}
	return nil
}

// ValidateName validates a display or tenant name.
func ValidateName(name string) error {
	if len(name) == 0 {
		return errors.New("name cannot be empty")
	}
	if len(name) > 256 {
		return errors.New("name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("name must be valid UTF-8")
	}
	return nil
}
