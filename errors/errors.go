/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned when an entity or document is not found
	ErrNotFound = errors.New("entity not found")

	// ErrConstraintViolation is returned when a write would break a unique index
	ErrConstraintViolation = errors.New("unique constraint violated")

	// ErrTypeMismatch is returned when a stored value does not have the type a field expects
	ErrTypeMismatch = errors.New("stored value type mismatch")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotRegistered is returned when no entity type is registered for an object
	ErrNotRegistered = errors.New("entity type not registered")

	// ErrDetached is returned for store operations on an object that was deleted.
	// It also matches ErrNotFound.
	ErrDetached = &detachedError{}

	// ErrClosed is returned by engines after Close
	ErrClosed = errors.New("store is closed")
)

type detachedError struct{}

func (e *detachedError) Error() string { return "entity is detached from the store" }

func (e *detachedError) Is(target error) bool { return target == ErrNotFound }

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with key %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ConstraintViolationError reports a unique index collision
type ConstraintViolationError struct {
	Type  string
	Field string
	Value any
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("%s: unique field %q already holds value %v", e.Type, e.Field, e.Value)
}

func (e *ConstraintViolationError) Is(target error) bool {
	return target == ErrConstraintViolation
}

// TypeMismatchError is raised while reading a document into an entity
type TypeMismatchError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("field %q: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewConstraintViolationError creates a new ConstraintViolationError
func NewConstraintViolationError(entityType, field string, value any) error {
	return &ConstraintViolationError{Type: entityType, Field: field, Value: value}
}

// NewTypeMismatchError creates a new TypeMismatchError. actual is described by its Go type.
func NewTypeMismatchError(field, expected string, actual any) error {
	desc := "<missing>"
	if actual != nil {
		desc = fmt.Sprintf("%T", actual)
	}
	return &TypeMismatchError{Field: field, Expected: expected, Actual: desc}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConstraintViolation checks if an error is a unique constraint violation
func IsConstraintViolation(err error) bool {
	return errors.Is(err, ErrConstraintViolation)
}

// IsTypeMismatch checks if an error is a deserialization type mismatch
func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsDetached checks if an error reports a detached entity
func IsDetached(err error) bool {
	return errors.Is(err, ErrDetached)
}
