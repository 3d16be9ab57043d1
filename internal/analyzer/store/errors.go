package store

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a StorageError.
type ErrorKind string

const (
	// KindConnection means the backing storage could not be opened.
	KindConnection ErrorKind = "connection"
	// KindWrite means a write could not be committed.
	KindWrite ErrorKind = "write"
	// KindRead means a query could not be executed.
	KindRead ErrorKind = "read"
)

// Sentinels matched by errors.Is against any StorageError of the same kind.
var (
	ErrConnection = errors.New("history storage unavailable")
	ErrWrite      = errors.New("history write failed")
	ErrRead       = errors.New("history read failed")
)

// StorageError is returned by every failing HistoryStore operation.
type StorageError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func newStorageError(kind ErrorKind, op string, err error) *StorageError {
	return &StorageError{Kind: kind, Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s: %s error: %v", e.Op, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel for this error's kind.
func (e *StorageError) Is(target error) bool {
	switch e.Kind {
	case KindConnection:
		return target == ErrConnection
	case KindWrite:
		return target == ErrWrite
	case KindRead:
		return target == ErrRead
	default:
		return false
	}
}
