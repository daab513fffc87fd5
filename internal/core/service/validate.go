package service

import (
	"fmt"
	"strings"

	"github.com/99minutos/admin-panel/internal/core/domain"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt input limit
)

func authorize(actor domain.Principal, op domain.Operation) error {
	if !domain.CanPerform(actor.Role, op) {
		return domain.Denied(op)
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return fmt.Errorf("%w: password must be between %d and %d characters", domain.ErrInvalidInput, minPasswordLen, maxPasswordLen)
	}
	return nil
}

// validateAccount expects an already normalized email.
func validateAccount(email, password, firstName, lastName string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(firstName) == "" || strings.TrimSpace(lastName) == "" {
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}
	return validatePassword(password)
}
