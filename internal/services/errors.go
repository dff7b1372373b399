package services

import (
	"errors"
	"fmt"

	"translation-market/internal/repository"
)

// ErrorKind classifies workflow failures so the API boundary can map them
// to transport codes without parsing messages.
type ErrorKind string

const (
	KindPermissionDenied  ErrorKind = "PERMISSION_DENIED"
	KindInvalidTransition ErrorKind = "INVALID_TRANSITION"
	KindNotFound          ErrorKind = "NOT_FOUND"
	KindConflict          ErrorKind = "CONFLICT"
	KindStoreUnavailable  ErrorKind = "STORE_UNAVAILABLE"
)

// WorkflowError is the only error type the workflow engine returns for
// guard and permission failures. Invariant carries the violated rule for
// InvalidTransition so callers can render an actionable message.
type WorkflowError struct {
	Kind      ErrorKind
	Invariant string
	Err       error
}

func (e *WorkflowError) Error() string {
	if e.Invariant != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Invariant)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return string(e.Kind)
}

func (e *WorkflowError) Unwrap() error {
	return e.Err
}

// KindOf extracts the error kind, defaulting to StoreUnavailable for
// anything the engine did not classify.
func KindOf(err error) ErrorKind {
	var wfErr *WorkflowError
	if errors.As(err, &wfErr) {
		return wfErr.Kind
	}
	return KindStoreUnavailable
}

func permissionDenied() error {
	return &WorkflowError{Kind: KindPermissionDenied, Invariant: "actor is not permitted to perform this action"}
}

func invalidTransition(invariant string) error {
	return &WorkflowError{Kind: KindInvalidTransition, Invariant: invariant}
}

func notFound() error {
	return &WorkflowError{Kind: KindNotFound, Invariant: "entity does not exist"}
}

func conflict(invariant string) error {
	return &WorkflowError{Kind: KindConflict, Invariant: invariant}
}

// storeErr maps entity-store failures onto workflow error kinds. Guard
// failures never reach here; this only classifies persistence outcomes.
func storeErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound()
	case errors.Is(err, repository.ErrConflict):
		return conflict("entity was modified concurrently, reload and retry")
	case errors.Is(err, repository.ErrDuplicate):
		return conflict("a conflicting record already exists")
	default:
		return &WorkflowError{Kind: KindStoreUnavailable, Err: err}
	}
}
