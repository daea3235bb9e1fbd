package app

import (
	"context"

	"github.com/louisbranch/partyboard/internal/party/render"
)

// DisplaySurface is the external system that renders parties to end users.
// All three operations are fallible, retryless, and bounded by the caller's
// context deadline.
type DisplaySurface interface {
	// Send publishes a new payload at location and returns the handle the
	// party is keyed by from then on.
	Send(ctx context.Context, location string, payload render.Payload) (string, error)
	// Edit replaces the payload behind handle.
	Edit(ctx context.Context, handle string, payload render.Payload) error
	// Delete removes the payload behind handle.
	Delete(ctx context.Context, handle string) error
}

// IdentityLookup resolves cached display names opportunistically at render
// time. A false return degrades to a placeholder label, never an error.
type IdentityLookup interface {
	ResolveDisplayName(ctx context.Context, userID string) (string, bool)
}

// Notification is one fire-and-forget operational event.
type Notification struct {
	Title    string
	Fields   map[string]string
	Severity string
}

// Notification severities.
const (
	SeverityInfo = "info"
	SeverityWarn = "warn"
)

// Notifier delivers operational events. Delivery failure must never fail
// the originating operation; implementations log and move on.
type Notifier interface {
	Notify(ctx context.Context, event Notification)
}
