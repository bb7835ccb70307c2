package session

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"esgportal/errs"
	"esgportal/models"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestManager(t *testing.T) (*Manager, *clock) {
	t.Helper()
	c := &clock{now: time.Now()}
	m := NewManager([]byte("test-secret"), time.Hour, zaptest.NewLogger(t))
	m.now = c.Now
	return m, c
}

var alice = models.Identity{ID: "user-1", Email: "alice@example.com"}

func TestManager_SignInAndCurrent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	snap, err := m.CurrentSession(ctx, "client-1")
	require.NoError(t, err)
	require.False(t, snap.Authenticated())

	s, err := m.SignIn(ctx, "client-1", alice)
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)
	require.Equal(t, "user-1", s.IdentityID)

	snap, err = m.CurrentSession(ctx, "client-1")
	require.NoError(t, err)
	require.True(t, snap.Authenticated())
	require.Equal(t, s.ID, snap.Session.ID)

	claims, err := m.ValidateToken(s.Token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, s.ID, claims.ID)
}

func TestManager_OneSessionPerClient(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.SignIn(ctx, "client-1", alice)
	require.NoError(t, err)
	second, err := m.SignIn(ctx, "client-1", models.Identity{ID: "user-2", Email: "bob@example.com"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	_, err = m.Authenticate(ctx, first.Token)
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)

	got, err := m.Authenticate(ctx, second.Token)
	require.NoError(t, err)
	require.Equal(t, "user-2", got.IdentityID)
}

func TestManager_DemoIdentityCannotSignIn(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.SignIn(context.Background(), "client-1", models.Identity{ID: "demo", Demo: true})
	require.ErrorIs(t, err, errs.ErrDemoReadOnly)
}

func TestManager_SignOutNotifiesSubscribers(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	var got []Snapshot
	sub := m.OnSessionChange("client-1", func(s Snapshot) { got = append(got, s) })
	defer sub.Unsubscribe()

	_, err := m.SignIn(ctx, "client-1", alice)
	require.NoError(t, err)
	require.NoError(t, m.SignOut(ctx, "client-1"))

	require.Len(t, got, 2)
	require.True(t, got[0].Authenticated())
	require.False(t, got[1].Authenticated())
	require.Greater(t, got[1].Revision, got[0].Revision)
}

func TestManager_OtherClientsAreNotNotified(t *testing.T) {
	m, _ := newTestManager(t)
	var calls atomic.Int32
	sub := m.OnSessionChange("client-2", func(Snapshot) { calls.Add(1) })
	defer sub.Unsubscribe()

	_, err := m.SignIn(context.Background(), "client-1", alice)
	require.NoError(t, err)
	require.Zero(t, calls.Load())
}

func TestManager_RefreshIssuesNewToken(t *testing.T) {
	m, c := newTestManager(t)
	ctx := context.Background()

	_, err := m.Refresh(ctx, "client-1")
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)

	s, err := m.SignIn(ctx, "client-1", alice)
	require.NoError(t, err)
	c.Advance(30 * time.Minute)

	r, err := m.Refresh(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, s.ID, r.ID)
	require.NotEqual(t, s.Token, r.Token)
	require.True(t, r.ExpiresAt.After(s.ExpiresAt))
}

func TestManager_ExpiredSessionIsDropped(t *testing.T) {
	m, c := newTestManager(t)
	ctx := context.Background()

	var last Snapshot
	sub := m.OnSessionChange("client-1", func(s Snapshot) { last = s })
	defer sub.Unsubscribe()

	_, err := m.SignIn(ctx, "client-1", alice)
	require.NoError(t, err)
	c.Advance(2 * time.Hour)

	snap, err := m.CurrentSession(ctx, "client-1")
	require.NoError(t, err)
	require.False(t, snap.Authenticated())
	require.False(t, last.Authenticated())
}

func TestManager_ExpireStale(t *testing.T) {
	m, c := newTestManager(t)
	ctx := context.Background()

	_, err := m.SignIn(ctx, "client-1", alice)
	require.NoError(t, err)
	_, err = m.SignIn(ctx, "client-2", alice)
	require.NoError(t, err)
	require.Zero(t, m.ExpireStale())

	c.Advance(2 * time.Hour)
	require.Equal(t, 2, m.ExpireStale())
	require.Zero(t, m.ExpireStale())
}

func TestManager_CanceledContext(t *testing.T) {
	m, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.CurrentSession(ctx, "client-1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestManager_ValidateTokenRejectsForeignSignature(t *testing.T) {
	m, _ := newTestManager(t)
	other := NewManager([]byte("other-secret"), time.Hour, zaptest.NewLogger(t))

	s, err := other.SignIn(context.Background(), "client-1", alice)
	require.NoError(t, err)

	_, err = m.ValidateToken(s.Token)
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestSubscription_UnsubscribeWaitsForRunningCallback(t *testing.T) {
	m, _ := newTestManager(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	var once sync.Once
	sub := m.OnSessionChange("client-1", func(Snapshot) {
		once.Do(func() { close(entered) })
		<-release
		finished.Store(true)
	})

	go func() { _, _ = m.SignIn(context.Background(), "client-1", alice) }()
	<-entered

	done := make(chan struct{})
	go func() {
		sub.Unsubscribe()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Unsubscribe returned while callback was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	require.True(t, finished.Load())
}

func TestSubscription_NoDeliveryAfterUnsubscribe(t *testing.T) {
	m, _ := newTestManager(t)
	var calls atomic.Int32
	sub := m.OnSessionChange("client-1", func(Snapshot) { calls.Add(1) })
	sub.Unsubscribe()
	sub.Unsubscribe()

	_, err := m.SignIn(context.Background(), "client-1", alice)
	require.NoError(t, err)
	require.Zero(t, calls.Load())
}
