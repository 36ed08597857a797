package service

import (
	"errors"

	"github.com/evalex7/e-plan/internal/backup"
	"github.com/evalex7/e-plan/internal/repository"
)

var (
	ErrNotFound         = repository.ErrNotFound
	ErrInvalidInput     = repository.ErrInvalidInput
	ErrConflict         = repository.ErrConflict
	ErrPersistence      = repository.ErrPersistence
	ErrPermissionDenied = errors.New("permission denied")
)

// ErrorKind is the machine readable class of an error returned by the engine.
type ErrorKind string

const (
	KindValidation       ErrorKind = "validation"
	KindNotFound         ErrorKind = "not_found"
	KindConflict         ErrorKind = "conflict"
	KindPersistence      ErrorKind = "persistence"
	KindPermissionDenied ErrorKind = "permission_denied"
	KindInternal         ErrorKind = "internal"
)

func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, backup.ErrInvalidPayload):
		return KindValidation
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrPermissionDenied):
		return KindPermissionDenied
	}
	return KindInternal
}
