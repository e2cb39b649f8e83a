package partner

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/shopfront/backend/internal/domain/shared"
)

var (
	phonePattern = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

func validateName(field, name string, max int) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", field+" cannot be empty")
	}
	if utf8.RuneCountInString(name) > max {
		return shared.NewDomainError("INVALID_NAME", field+" is too long")
	}
	return nil
}

func validatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 50 characters")
	}
	if !phonePattern.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}
