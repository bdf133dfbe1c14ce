package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrAdminNotFound       = errors.New("administrator not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrPlasticTypeNotFound = errors.New("plastic type not found")
	ErrResetTokenNotFound  = errors.New("reset token not found")
	ErrRecognitionNotFound = errors.New("recognition batch not found")
	ErrDuplicate           = errors.New("duplicate record")
)

// ConflictError wraps a unique-constraint violation with the violated constraint name.
type ConflictError struct {
	Constraint string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("duplicate record (%s)", e.Constraint)
}

func (e *ConflictError) Unwrap() error { return ErrDuplicate }

// mapError converts driver errors into repository errors. notFound is returned
// for sql.ErrNoRows.
func mapError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return &ConflictError{Constraint: pqErr.Constraint}
	}
	return err
}

// affectedOne maps a zero RowsAffected to notFound.
func affectedOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
