package services

import (
	"errors"
	"fmt"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"gorm.io/gorm"
)

// Error categories. Concrete errors wrap one of these so handlers can map them
// to status codes with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

func notFound(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func conflict(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConflict, fmt.Sprintf(format, args...))
}

func forbidden(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnauthorized, fmt.Sprintf(format, args...))
}

// categorize folds target package errors and missing records into the
// service categories, leaving anything else untouched.
func categorize(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return err
	case errors.Is(err, target.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, target.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case errors.Is(err, target.ErrUnknownKind), errors.Is(err, target.ErrMalformed):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}
