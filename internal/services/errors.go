package services

import (
	"errors"
	"fmt"
	"sort"

	"dinepos/internal/repositories"

	"github.com/hashicorp/go-multierror"
)

// ValidationError collects per-field input problems.
type ValidationError struct {
	Details map[string]string
	errs    *multierror.Error
}

func (e *ValidationError) Add(field, message string) {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	if _, exists := e.Details[field]; exists {
		return
	}
	e.Details[field] = message
	e.errs = multierror.Append(e.errs, fmt.Errorf("%s: %s", field, message))
}

func (e *ValidationError) Error() string {
	if e.errs == nil {
		return "validation failed"
	}
	e.errs.ErrorFormat = func(es []error) string {
		msgs := make([]string, len(es))
		for i, err := range es {
			msgs[i] = err.Error()
		}
		sort.Strings(msgs)
		return fmt.Sprintf("validation failed: %v", msgs)
	}
	return e.errs.Error()
}

// ErrOrNil returns nil when nothing was added.
func (e *ValidationError) ErrOrNil() error {
	if len(e.Details) == 0 {
		return nil
	}
	return e
}

func NewValidationError(field, message string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, message)
	return v
}

// ConflictError rejects an operation because of the current state of a resource.
type ConflictError struct {
	Message string
	// TableBusy marks the table already having an open order.
	TableBusy bool
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NotFoundError names the missing resource and unwraps to repositories.ErrNotFound.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Unwrap() error {
	return repositories.ErrNotFound
}

// notFoundAs rewrites a repository miss into a NotFoundError for resource.
func notFoundAs(err error, resource string) error {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return &NotFoundError{Resource: resource}
	}
	return err
}
