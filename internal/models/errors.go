package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRows                 = errors.New("no rows")
	ErrUNIQUEConstraintFailed = errors.New("unique constraint failed")
	ErrFailedToAddUser        = errors.New("failed to add user")
	ErrFailedToGetUser        = errors.New("failed to get user")
	ErrInternal               = errors.New("internal server error")
	ErrMethodNotAllowed       = errors.New("method not allowed")
	ErrForbidden              = errors.New("not permitted")
	ErrNotFound               = errors.New("not found")
	ErrInvalidParams          = errors.New("invalid params")
	ErrUserNotFound           = errors.New("user not found")
	ErrUserExists             = errors.New("user already exists")
	ErrSessionNotFound        = errors.New("sessions not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")

	ErrDocumentNotFound = errors.New("document not found")
	ErrEmptyTitle       = errors.New("title must not be empty")
	ErrEmptyContent     = errors.New("content must not be empty")
	ErrKindMismatch     = errors.New("document kind cannot be changed")
	ErrInvalidKind      = errors.New("unknown document kind")

	ErrImageNotFound    = errors.New("image not found")
	ErrInvalidImageName = errors.New("image name contains no valid characters")
	ErrInvalidImageType = errors.New("image type is not allowed")
	ErrImageTooLarge    = errors.New("image is too large")
	ErrImageNameTaken   = errors.New("image name already exists")

	ErrTemplateNotFound = errors.New("template not found")

	ErrInvalidFormat        = errors.New("unknown export format")
	ErrEmptyInput           = errors.New("empty input")
	ErrConverterUnavailable = errors.New("converter unavailable")
	ErrConverterFailed      = errors.New("converter failed")
	ErrNoFramesProduced     = errors.New("no frames produced")
	ErrPackagingFailed      = errors.New("packaging failed")
	ErrIOFailure            = errors.New("io failure")
	ErrGenerationFailed     = errors.New("generation failed")

	ErrTicketNotFound = errors.New("file not found or session invalid")
)

type UniqueConstraintError struct {
	Constraint string
	Err        error
}

func (e *UniqueConstraintError) Error() string {
	return fmt.Sprintf("%v: %s", e.Err, e.Constraint)
}

func (e *UniqueConstraintError) Unwrap() error {
	return e.Err
}

// ConverterError carries the diagnostic of an external tool run. The
// diagnostic is meant for operator logs only.
type ConverterError struct {
	Tool       string
	ExitCode   int
	Diagnostic string
}

func (e *ConverterError) Error() string {
	return fmt.Sprintf("%v: %s exited with code %d: %s", ErrConverterFailed, e.Tool, e.ExitCode, e.Diagnostic)
}

func (e *ConverterError) Unwrap() error {
	return ErrConverterFailed
}
