package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	ErrAlreadyFollowing    = errors.New("already following")
	ErrFollowLimitExceeded = errors.New("follow limit exceeded")
	ErrInactiveUser        = errors.New("user is not active")
	ErrJobNotFound         = errors.New("job not found")
	ErrJobAlreadyRunning   = errors.New("job already running")
	ErrNoTargetLeagues     = errors.New("no target leagues configured")
)
