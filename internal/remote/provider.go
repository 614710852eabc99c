// Package remote talks to the external calendar provider. The engine
// consumes it through the narrow Provider interface; transport policy
// (timeouts, retries) lives entirely on this side of the boundary.
package remote

import (
	"context"
	"errors"

	"weekplan/internal/model"
	"weekplan/internal/timewin"
)

var (
	// ErrSourceUnavailable means the remote source could not be reached or
	// returned garbage. The engine degrades to a local-only view on it; it is
	// never fatal.
	ErrSourceUnavailable = errors.New("remote source unavailable")

	// ErrNotFound is returned by Delete when the provider does not know the
	// id. The coordinator maps it to success: the activity is already gone.
	ErrNotFound = errors.New("activity not found on remote")
)

// Provider is the calendar source consumed by the source merger and the
// mutation coordinator. All calls may suspend on I/O and honor ctx.
type Provider interface {
	// Fetch returns the raw records overlapping the window. A failed fetch
	// yields ErrSourceUnavailable (possibly wrapped).
	Fetch(ctx context.Context, w timewin.Window) ([]model.RawRecord, error)

	// Create writes a record through to the provider and returns the stored
	// copy (same id the caller supplied, provider-canonical fields).
	Create(ctx context.Context, rec model.RawRecord) (model.RawRecord, error)

	// Delete removes a record by id. A missing id yields ErrNotFound.
	Delete(ctx context.Context, id string) error
}
