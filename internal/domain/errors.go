package domain

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrItemNotFound   = errors.New("cart item not found")
	ErrInvalidID      = errors.New("invalid cart item id")
	ErrSellerConflict = errors.New("items from different sellers are not allowed")
	ErrDeleteFailed   = errors.New("cart item could not be deleted")
)

// ValidationError reports caller input that cannot form a cart item.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
