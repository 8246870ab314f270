package docdb

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDraft is returned by Save when no draft was supplied.
	ErrMissingDraft = errors.New("save requires a draft")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("store is closed")

	errEmptyGeneratedID = errors.New("generator returned an empty id")
)

// DuplicateIDError is returned by the create path of Save when a record
// already exists under the resolved id. No write occurs.
type DuplicateIDError struct {
	Kind string
	ID   string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("entity %s with id %s already exists", e.Kind, e.ID)
}

// IDGenerationError is returned by Save when the external id Generator
// failed. The save fails atomically, nothing is written.
type IDGenerationError struct {
	Ref CollectionRef
	Err error
}

func (e *IDGenerationError) Error() string {
	return fmt.Sprintf("generating id for %s: %v", e.Ref.Kind(), e.Err)
}

func (e *IDGenerationError) Unwrap() error {
	return e.Err
}
