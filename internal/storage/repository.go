package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/sandeepkv93/streakd/internal/model"
)

var ErrNotFound = errors.New("storage: not found")

// DocumentStore keeps one document per user. Patch replaces whole top-level
// fields; nested maps are never merged.
type DocumentStore interface {
	Get(ctx context.Context, uid string) (model.UserRecord, error)
	Patch(ctx context.Context, uid string, p model.Patch) error
	// Init writes rec only when no document exists for uid and reports
	// whether it did.
	Init(ctx context.Context, uid string, rec model.UserRecord) (bool, error)
	Close() error
}

// PersistenceError is a failed store operation. The in-memory state the
// write came from is kept as is.
type PersistenceError struct {
	Op  string
	UID string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.UID, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func wrapErr(op, uid string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, UID: uid, Err: err}
}
