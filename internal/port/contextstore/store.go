// Package contextstore defines the context preservation port.
package contextstore

import (
	"context"

	"github.com/epicflowhq/epicflow/internal/domain/epic"
)

// Store keeps the most recent input and analysis per work-item identity.
//
// At most one entry exists per issue number; last write wins and no history is
// retained. Get returns domain.ErrNotFound for an absent id, never a
// default-constructed entry, so callers can distinguish "never analyzed" from
// "analyzed with empty fields".
type Store interface {
	Store(ctx context.Context, entry epic.ContextEntry) error
	Get(ctx context.Context, issueNumber int) (epic.ContextEntry, error)

	// Delete removes an entry. The orchestration path never deletes; this
	// exists for operational tooling only.
	Delete(ctx context.Context, issueNumber int) error

	// Len reports the number of stored entries.
	Len(ctx context.Context) (int, error)
}
