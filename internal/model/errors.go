package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")

	// Token related errors
	ErrTokenNotFound = errors.New("token not found")
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenUsed     = errors.New("token already used")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Domain errors
	ErrUniversityNotFound = errors.New("university not found")
	ErrJobNotFound        = errors.New("job not found")
	ErrAlreadyApplied     = errors.New("already applied to this job")
	ErrProjectNotFound    = errors.New("project not found")
	ErrNotProjectMember   = errors.New("not a project member")
	ErrTaskNotFound       = errors.New("task not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
