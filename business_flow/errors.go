package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Quote request validation errors
	ErrInvalidCoordinates = errors.New("coordinates must be two finite numbers")
	ErrEmptyItemList      = errors.New("at least one item with a positive quantity is required")
	ErrInvalidQuantity    = errors.New("item quantity must be a positive integer")

	// Quote submission errors
	ErrSubmissionInFlight      = errors.New("a quote submission is already in progress")
	ErrQuoteSessionNotFound    = errors.New("quote session not found")
	ErrUnknownSpecialVehicle   = errors.New("selected special vehicle is not in the catalog")
	ErrQuoteServiceUnavailable = errors.New("quote service unavailable")

	// Catalog errors
	ErrCatalogNotLoaded    = errors.New("catalog not loaded yet")
	ErrHistoryNotAvailable = errors.New("quote history storage not available")
)

// BusinessError wraps business logic errors with additional context
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsInvalidCoordinates(err error) bool {
	return errors.Is(err, ErrInvalidCoordinates)
}

func IsEmptyItemList(err error) bool {
	return errors.Is(err, ErrEmptyItemList)
}

func IsInvalidQuantity(err error) bool {
	return errors.Is(err, ErrInvalidQuantity)
}

func IsSubmissionInFlight(err error) bool {
	return errors.Is(err, ErrSubmissionInFlight)
}

func IsQuoteSessionNotFound(err error) bool {
	return errors.Is(err, ErrQuoteSessionNotFound)
}

func IsUnknownSpecialVehicle(err error) bool {
	return errors.Is(err, ErrUnknownSpecialVehicle)
}

func IsCatalogNotLoaded(err error) bool {
	return errors.Is(err, ErrCatalogNotLoaded)
}
