// Package blob lists project images held in object storage.
// Images follow the naming convention <slug>-<n>.<ext>, for example pixtool-2.webp.
package blob

import (
	"context"
	"fmt"
)

// Object is one stored file.
type Object struct {
	Pathname string `json:"pathname"`
	URL      string `json:"url"`
}

// Store lists every object in a bucket or blob store.
type Store interface {
	List(ctx context.Context) ([]Object, error)
	// Name identifies the provider in logs.
	Name() string
}

// Error represents a failed storage operation.
type Error struct {
	Provider string
	Message  string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s storage: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s storage: %s", e.Provider, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
