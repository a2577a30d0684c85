// Package mailsource fetches recent raw messages from a remote inbox.
package mailsource

import (
	"context"
	"fmt"

	"mailbrief/internal/model"
)

// Source is the capability interface for a remote inbox, keeping
// provider and session mechanics out of the processing core.
type Source interface {
	// FetchRecent returns up to max of the most recent inbox messages,
	// newest first.
	FetchRecent(ctx context.Context, max int) ([]model.RawMessage, error)
}

// SourceError marks a failure of the upstream mail source, distinct
// from per-message processing failures.
type SourceError struct {
	Op  string
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("mail source %s failed: %v", e.Op, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }
