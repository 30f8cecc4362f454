package auth

import "errors"

var (
	ErrEmailExists        = errors.New("email already exists")
	ErrCompanyExists      = errors.New("company already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAdminNotFound      = errors.New("administrator not found")
)
