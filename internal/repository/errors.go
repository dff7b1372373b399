package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict means an optimistic version check failed; the caller
	// should reload and retry.
	ErrConflict = errors.New("version conflict")
	// ErrDuplicate means a unique constraint was violated.
	ErrDuplicate = errors.New("duplicate record")
	// ErrUnavailable means the store failed transiently; safe to retry
	// with backoff, no partial state was left behind.
	ErrUnavailable = errors.New("store unavailable")
)

const pqUniqueViolation = "23505"

// mapErr translates driver and gorm errors into the store's error set.
func (r *Repository) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
		return ErrDuplicate
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
