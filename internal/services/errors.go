package services

import (
	"errors"

	"github.com/SAP-F-2025/evalmate-service/internal/wizard"
)

// Generic errors
var (
	ErrNotFound          = errors.New("not found")
	ErrBadRequest        = errors.New("bad request")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = wizard.ErrInvalidState
)

// Domain errors
var (
	ErrFormNotFound       = wrapNotFound("form not found")
	ErrSubmissionNotFound = wrapNotFound("submission not found")
	ErrSessionNotFound    = wrapNotFound("session not found")
	ErrFormNotPublished   = errors.New("form is not published")
)

type notFoundError struct {
	msg string
}

func wrapNotFound(msg string) error { return &notFoundError{msg: msg} }

func (e *notFoundError) Error() string { return e.msg }

func (e *notFoundError) Unwrap() error { return ErrNotFound }
