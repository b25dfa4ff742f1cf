/*
Package errors provides semantic error types for the sportstore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound            = errors.New("entity not found")
	    ErrConstraintViolation = errors.New("unique constraint violated")
	    ErrTypeMismatch        = errors.New("stored value type mismatch")
	    ErrInvalidInput        = errors.New("invalid input")
	    ErrNotRegistered       = errors.New("entity type not registered")
	)

ErrDetached is returned for operations on an entity that has been deleted
through the same Datastore; it also satisfies errors.Is(err, ErrNotFound).

Usage:

	err := ds.Save(ctx, user)
	if err != nil {
	    if errors.IsConstraintViolation(err) {
	        // another user already owns this email address
	    }
	    return err
	}

	// Create typed errors
	err := errors.NewNotFoundError("users", "123")
	err := errors.NewConstraintViolationError("users", "emailAddress", "a@b.c")
	err := errors.NewTypeMismatchError("gender", "int", "two")

Store-operation errors are never retried internally: they describe caller or
business-logic mistakes, not transient faults.
*/
package errors
