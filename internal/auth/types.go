package auth

import (
	"errors"
	"regexp"
)

// usernamePattern defines the valid format for usernames:
// alphanumeric, dots, hyphens, underscores, 1-64 characters.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// IsValidUsername checks if a username meets format requirements.
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// Role represents an authorisation tier.
type Role string

const (
	// RoleStaff works the front desk: clients and appointments.
	RoleStaff Role = "staff"

	// RoleManager can also change the catalogue (barbers, services).
	RoleManager Role = "manager"
)

// IsValidRole returns true for a known staff role.
func IsValidRole(r Role) bool {
	return r == RoleStaff || r == RoleManager
}

// Staff is an account that can sign in to the booking API.
type Staff struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	DisplayName  string `json:"display_name"`
	PasswordHash string `json:"-"` // never serialised
	Role         Role   `json:"role"`
	Active       bool   `json:"active"`
}

// Sentinel errors for auth operations.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStaffNotFound      = errors.New("staff member not found")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrForbidden          = errors.New("insufficient permissions")
)
