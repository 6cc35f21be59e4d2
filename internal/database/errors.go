package database

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassTransient
	ErrorClassDeadlock
	ErrorClassSerialization
)

const (
	codeUniqueViolation = "23505"

	orderCodeConstraint = "orders_order_code_key"
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001":
			return ErrorClassSerialization
		case "40P01":
			return ErrorClassDeadlock
		case "55P03":
			return ErrorClassTransient
		case codeUniqueViolation, "23503", "23502", "23514":
			return ErrorClassPermanent
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return ErrorClassPermanent
	}

	return ErrorClassPermanent
}

func IsRetryable(err error) bool {
	class := ClassifyError(err)
	return class == ErrorClassTransient ||
		class == ErrorClassDeadlock ||
		class == ErrorClassSerialization
}

// TranslateInsertOrder maps a unique violation on the order code to ErrOrderCodeConflict.
func TranslateInsertOrder(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeUniqueViolation && pqErr.Constraint == orderCodeConstraint {
		return ErrOrderCodeConflict
	}
	return err
}

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrCatalogItemNotFound = errors.New("catalog item not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderCodeConflict   = errors.New("order code already taken")
	ErrShippingMerged      = errors.New("shipping address already merged")
	ErrLockTimeout         = errors.New("lock timeout")
)
