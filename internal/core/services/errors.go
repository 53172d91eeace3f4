package services

import (
	"errors"
)

var (
	ErrMissingField       = errors.New("missing required field")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password too short")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrCPFTaken           = errors.New("cpf already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// MissingFieldError names the absent field and matches ErrMissingField.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return ErrMissingField.Error() + ": " + e.Field
}

func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

func missingField(name string) error {
	return &MissingFieldError{Field: name}
}
