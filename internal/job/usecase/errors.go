package usecase

import "errors"

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrEmailNotFound       = errors.New("email not found")
	ErrInvalidStatus       = errors.New("invalid status")
)
