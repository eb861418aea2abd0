package custom_error

import (
	"errors"
	"fmt"
)

// InvalidArgumentError reports a bad quantity, action or status value.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func NewInvalidArgument(field, format string, args ...any) error {
	return &InvalidArgumentError{Field: field, Message: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Key)
}

func NewNotFound(resource, key string) error {
	return &NotFoundError{Resource: resource, Key: key}
}

// InsufficientStockError is shown to the end user as is.
type InsufficientStockError struct {
	Description string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("Not enough stock for “%s”: available %d, requested %d", e.Description, e.Available, e.Requested)
}

// UnauthorizedError is shown to the end user as is.
type UnauthorizedError struct {
	Actor  string
	Reason string
}

func (e *UnauthorizedError) Error() string {
	if e.Actor == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Actor, e.Reason)
}

func NewUnauthorized(actor, reason string) error {
	return &UnauthorizedError{Actor: actor, Reason: reason}
}

// StoreUnavailableError wraps any failed backend call. The core never retries
// it; the caller decides.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("store unavailable: %s: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

func NewStoreUnavailable(op string, err error) error {
	return &StoreUnavailableError{Op: op, Err: err}
}

func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsInsufficientStock(err error) bool {
	var target *InsufficientStockError
	return errors.As(err, &target)
}

func IsUnauthorized(err error) bool {
	var target *UnauthorizedError
	return errors.As(err, &target)
}

func IsStoreUnavailable(err error) bool {
	var target *StoreUnavailableError
	return errors.As(err, &target)
}
