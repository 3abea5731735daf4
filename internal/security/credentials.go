package security

import (
	"crypto/rand"
	"encoding/binary"
	"regexp"
	"strconv"
	"strings"

	apperrors "imagemarket/internal/errors"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether email looks like an address.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidateRegistration checks a sign-up request. Nothing is persisted.
func ValidateRegistration(username, email, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(email) == "" || password == "" {
		return apperrors.Validation("Missing required fields")
	}
	if !ValidEmail(email) {
		return apperrors.Validation("Invalid email format")
	}
	return nil
}

// ValidateLogin accepts any non-empty email and password.
func ValidateLogin(email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return apperrors.Unauthorized("Invalid credentials")
	}
	return nil
}

// NewUserID returns a random "user_" prefixed id.
func NewUserID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("security: crypto/rand failed: " + err.Error())
	}
	return "user_" + strconv.FormatUint(binary.BigEndian.Uint64(b[:]), 36)
}
