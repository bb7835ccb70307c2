// Package session issues client sessions and notifies subscribers when they change.
package session

import (
	"context"

	"esgportal/models"
)

// Snapshot is the session state of one client at a point in time.
// Session is nil when the client is signed out.
type Snapshot struct {
	Session *models.Session
	// Revision increases with every change across all clients.
	// A snapshot with a lower revision than one already seen is stale.
	Revision uint64
}

// Authenticated reports whether the snapshot carries a session.
func (s Snapshot) Authenticated() bool { return s.Session != nil }

// Subscription is a live registration for session changes.
type Subscription interface {
	// Unsubscribe stops delivery. When it returns, no callback for this
	// subscription is running and none will start. It must not be called
	// from inside the subscription's own callback.
	Unsubscribe()
}

// Oracle is the read side of the session provider.
type Oracle interface {
	// CurrentSession returns the client's session state.
	CurrentSession(ctx context.Context, clientID string) (Snapshot, error)
	// OnSessionChange registers fn for every later change of the client's session.
	OnSessionChange(clientID string, fn func(Snapshot)) Subscription
}
