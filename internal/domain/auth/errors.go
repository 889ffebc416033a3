package auth

import "myhometech/internal/pkg/apperr"

var (
	ErrInvalidCredentials = apperr.Auth("INVALID_CREDENTIALS", "Invalid email or password")
	ErrUserInactive       = apperr.Forbidden("USER_INACTIVE", "Account is deactivated")
	ErrEmailAlreadyExists = apperr.Conflict("EMAIL_EXISTS", "This email is already registered")
	ErrUserNotFound       = apperr.NotFound("USER_NOT_FOUND", "User not found")
	ErrWrongPassword      = apperr.Validation("WRONG_PASSWORD", "Current password is incorrect")
	ErrInvalidRole        = apperr.Validation("INVALID_ROLE", "Role must be client or technician")
	ErrSelfDeactivation   = apperr.Validation("SELF_DEACTIVATION", "Admins cannot deactivate themselves")
)
