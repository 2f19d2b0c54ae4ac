package entity

import "errors"

var (
	ErrNameRequired  = errors.New("name is required")
	ErrEmailRequired = errors.New("email is required")
	ErrLeadNotFound  = errors.New("lead not found")
	ErrNoteNotFound  = errors.New("note not found")
	ErrUserNotFound  = errors.New("user not found")
)
