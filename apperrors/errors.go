package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransientConflict marks conflicts that a fresh attempt can resolve.
	ErrTransientConflict = errors.New("transient conflict")
)

// NotFoundError names the missing entity so callers can tell an absent
// article from an absent version while still matching ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Entity)
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NotFound returns a *NotFoundError for the given entity and id.
func NotFound(entity string, id fmt.Stringer) error {
	if id == nil {
		return &NotFoundError{Entity: entity}
	}
	return &NotFoundError{Entity: entity, ID: id.String()}
}

// ConflictError reports a uniqueness violation. Transient conflicts also
// match ErrTransientConflict.
type ConflictError struct {
	Entity    string
	Detail    string
	Transient bool
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict: %s", e.Entity, e.Detail)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict || (e.Transient && target == ErrTransientConflict)
}

func Conflict(entity, detail string) error {
	return &ConflictError{Entity: entity, Detail: detail}
}

// TransientConflict is a Conflict lost to a concurrent writer; retrying the
// whole operation re-reads the state it raced on.
func TransientConflict(entity, detail string) error {
	return &ConflictError{Entity: entity, Detail: detail, Transient: true}
}

// IsNotFoundEntity reports whether err is a NotFoundError for entity.
func IsNotFoundEntity(err error, entity string) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Entity == entity
}
