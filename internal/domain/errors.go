package domain

import "errors"

// Sentinel errors returned by repositories. The use case layer maps them to
// API errors.
var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyReserved = errors.New("parking spot already reserved")
	ErrUsernameTaken   = errors.New("username already exists")
)
