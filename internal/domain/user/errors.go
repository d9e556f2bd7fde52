package user

import "errors"

// User domain errors
var (
	ErrUserNotFound           = errors.New("user not found")
	ErrInvalidActorClaims     = errors.New("actor claims are missing or invalid")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
)
