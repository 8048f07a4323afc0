package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrDuplicate = errors.New("duplicate")
	ErrInvalid   = errors.New("invalid input")
)

// DuplicateError names the unique field that was violated. It matches ErrDuplicate with errors.Is.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

// Invalid wraps ErrInvalid with a caller-facing message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// FromPg maps driver errors onto the kinds above. Anything else is returned unchanged.
func FromPg(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505":
		return &DuplicateError{Field: fieldFromConstraint(pgErr.ConstraintName)}
	case "23503":
		return ErrNotFound
	}
	return err
}

// fieldFromConstraint turns "users_email_key" into "email".
func fieldFromConstraint(name string) string {
	name = strings.TrimSuffix(name, "_key")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
