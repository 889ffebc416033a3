package profile

import "myhometech/internal/pkg/apperr"

var (
	ErrProfileNotFound = apperr.NotFound("PROFILE_NOT_FOUND", "Profile not found")
	ErrInvalidProfile  = apperr.Validation("INVALID_PROFILE", "Invalid profile data")
)
