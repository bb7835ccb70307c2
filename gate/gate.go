// Package gate implements the auth gate: a per-mount state machine that decides
// whether protected content may be shown to a client.
package gate

import (
	"context"
	"net/url"
	"sync"

	"esgportal/models"
	"esgportal/session"

	"go.uber.org/zap"
)

// SignInPath is where unauthenticated clients are sent.
const SignInPath = "/auth"

// State is the gate's view of the client's session.
type State int

const (
	Loading State = iota
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// Gate follows one client's session for the lifetime of a mount.
// The zero value is not usable; construct with New.
type Gate struct {
	oracle   session.Oracle
	clientID string
	log      *zap.Logger

	mu        sync.Mutex
	state     State
	session   *models.Session
	revision  uint64
	applied   bool
	mounted   bool
	unmounted bool
	cancel    context.CancelFunc
	sub       session.Subscription
	changed   chan struct{}
}

// New returns a gate in the Loading state.
func New(oracle session.Oracle, clientID string, log *zap.Logger) *Gate {
	return &Gate{
		oracle:   oracle,
		clientID: clientID,
		log:      log,
		changed:  make(chan struct{}),
	}
}

// Mount subscribes to session changes and starts the initial session check.
// ctx bounds the initial check; Unmount cancels it. Mount is a no-op after the
// first call and after Unmount.
func (g *Gate) Mount(ctx context.Context) {
	g.mu.Lock()
	if g.mounted || g.unmounted {
		g.mu.Unlock()
		return
	}
	g.mounted = true
	ctx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.mu.Unlock()

	// Subscribe before checking so a change between the two is not lost.
	sub := g.oracle.OnSessionChange(g.clientID, g.apply)
	g.mu.Lock()
	if g.unmounted {
		g.mu.Unlock()
		cancel()
		sub.Unsubscribe()
		return
	}
	g.sub = sub
	g.mu.Unlock()

	go func() {
		snap, err := g.oracle.CurrentSession(ctx, g.clientID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// A failed lookup reads as signed out.
			g.log.Warn("session lookup failed", zap.Error(err))
			snap = session.Snapshot{}
		}
		g.apply(snap)
	}()
}

// Unmount stops the gate. When it returns no further state change happens.
func (g *Gate) Unmount() {
	g.mu.Lock()
	if g.unmounted {
		g.mu.Unlock()
		return
	}
	g.unmounted = true
	cancel, sub := g.cancel, g.sub
	g.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Unsubscribe()
	}
}

func (g *Gate) apply(snap session.Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.unmounted {
		return
	}
	if g.applied && snap.Revision < g.revision {
		return
	}
	g.applied = true
	g.revision = snap.Revision

	next := Unauthenticated
	if snap.Session != nil {
		next = Authenticated
	}
	same := next == g.state && sameSession(g.session, snap.Session)
	g.state = next
	g.session = snap.Session
	if !same {
		close(g.changed)
		g.changed = make(chan struct{})
	}
}

// Current returns the state and, when authenticated, the session.
func (g *Gate) Current() (State, *models.Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state, g.session
}

// Changed returns a channel closed at the next state change.
func (g *Gate) Changed() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.changed
}

// Wait blocks until the gate leaves Loading or ctx is done.
func (g *Gate) Wait(ctx context.Context) (State, error) {
	for {
		g.mu.Lock()
		st, ch := g.state, g.changed
		g.mu.Unlock()
		if st != Loading {
			return st, nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return Loading, ctx.Err()
		}
	}
}

func sameSession(a, b *models.Session) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Token == b.Token
}

// ViewKind is what the gate lets the caller render.
type ViewKind int

const (
	ViewPlaceholder ViewKind = iota
	ViewChildren
	ViewRedirect
)

// View is the render decision for a requested location.
type View struct {
	Kind ViewKind
	// RedirectTo is set for ViewRedirect.
	RedirectTo string
}

// Render decides what to show for requested, the location the client asked for.
func Render(state State, requested string) View {
	switch state {
	case Authenticated:
		return View{Kind: ViewChildren}
	case Unauthenticated:
		return View{Kind: ViewRedirect, RedirectTo: SignInURL(requested)}
	default:
		return View{Kind: ViewPlaceholder}
	}
}

// SignInURL is the sign-in entry point carrying requested for the return trip.
func SignInURL(requested string) string {
	if requested == "" {
		return SignInPath
	}
	return SignInPath + "?" + url.Values{"redirect": {requested}}.Encode()
}
