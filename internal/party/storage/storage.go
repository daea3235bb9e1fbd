// Package storage defines persistence contracts for party records.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/partyboard/internal/party/domain"
)

// ErrNotFound indicates a requested party record is missing. Fetching a
// deleted party returns this rather than an empty aggregate.
var ErrNotFound = errors.New("party not found")

// Store persists party aggregates keyed by handle. Upsert is full-row
// replace over the party and its entire member list as one logical unit;
// callers finish all domain computation before writing. Operations are
// atomic at single-party granularity only.
type Store interface {
	// Upsert writes the party and its member list, replacing any prior row.
	Upsert(ctx context.Context, party domain.Party) error
	// Fetch loads one party with members in join order, or ErrNotFound.
	Fetch(ctx context.Context, handle string) (domain.Party, error)
	// Delete removes the party and its member rows together. Deleting a
	// missing handle is not an error.
	Delete(ctx context.Context, handle string) error
	// ListDuePromotions returns handles of recruiting, time-scheduled
	// parties whose instant is at or before now.
	ListDuePromotions(ctx context.Context, now time.Time) ([]string, error)
	// ListOpen returns handles of every non-closed party, for display
	// reconciliation after a restart.
	ListOpen(ctx context.Context) ([]string, error)
}
