package database

import (
	"errors"

	"github.com/lib/pq"
	"github.com/library-service/cmd/api/book"
)

const (
	pqUniqueViolation     = pq.ErrorCode("23505")
	pqForeignKeyViolation = pq.ErrorCode("23503")
	pqCheckViolation      = pq.ErrorCode("23514")
)

/* Turns constraint violations reported by PostgreSQL into domain errors. Anything else is returned as is. */
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return book.ErrResponseConflict.WithDetails(pqErr.Detail)
	case pqForeignKeyViolation:
		return book.ErrResponseInvalidReference.WithMessage("Referenced record does not exist")
	case pqCheckViolation:
		return book.ErrResponseValidation.WithMessage("Value violates constraint " + pqErr.Constraint)
	default:
		return err
	}
}
