package interfaces

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageRead is matched by every StorageReadError
	ErrStorageRead = errors.New("storage read failed")

	// ErrStorageWrite is matched by every StorageWriteError
	ErrStorageWrite = errors.New("storage write failed")

	// ErrPageStateUnavailable is returned by page checks and actions when the loaded
	// document does not contain the expected elements. Callers treat it as "nothing to do".
	ErrPageStateUnavailable = errors.New("page state unavailable")
)

// StorageReadError reports stored content that exists but cannot be read or parsed.
// It is never recovered by substituting defaults.
type StorageReadError struct {
	Resource string
	Err      error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Resource, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

func (e *StorageReadError) Is(target error) bool { return target == ErrStorageRead }

// StorageWriteError reports a write that did not become durable
type StorageWriteError struct {
	Resource string
	Err      error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Resource, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

func (e *StorageWriteError) Is(target error) bool { return target == ErrStorageWrite }
