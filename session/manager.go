package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"esgportal/errs"
	"esgportal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const issuer = "esgportal"

// Claims are the JWT claims of a session access token.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Manager is the in-process Oracle. It keeps at most one session per client id.
type Manager struct {
	secret []byte
	ttl    time.Duration
	log    *zap.Logger
	now    func() time.Time

	mu        sync.Mutex
	rev       uint64
	clients   map[string]*models.Session // client id -> active session
	bySession map[string]string          // session id -> client id
	subs      map[string]map[uint64]*subscriber
	nextSubID uint64
}

var _ Oracle = (*Manager)(nil)

// NewManager constructs a Manager signing tokens with secret.
func NewManager(secret []byte, ttl time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		secret:    secret,
		ttl:       ttl,
		log:       log,
		now:       time.Now,
		clients:   map[string]*models.Session{},
		bySession: map[string]string{},
		subs:      map[string]map[uint64]*subscriber{},
	}
}

// CurrentSession returns the client's active session. An expired session is
// dropped here and reported to subscribers.
func (m *Manager) CurrentSession(ctx context.Context, clientID string) (Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	s, ok := m.clients[clientID]
	if ok && s.Expired(m.now()) {
		snap, subs := m.setLocked(clientID, nil)
		m.mu.Unlock()
		m.log.Info("session expired", zap.String("session_id", s.ID))
		deliver(subs, snap)
		return snap, nil
	}
	snap := Snapshot{Revision: m.rev}
	if ok {
		snap.Session = copySession(s)
	}
	m.mu.Unlock()
	return snap, nil
}

// OnSessionChange registers fn for later changes of clientID's session.
func (m *Manager) OnSessionChange(clientID string, fn func(Snapshot)) Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextSubID++
	id := m.nextSubID
	sub := &subscriber{fn: fn}
	if m.subs[clientID] == nil {
		m.subs[clientID] = map[uint64]*subscriber{}
	}
	m.subs[clientID][id] = sub
	return &subscription{m: m, clientID: clientID, id: id, sub: sub}
}

// SignIn replaces any session of clientID with a new one for identity.
func (m *Manager) SignIn(ctx context.Context, clientID string, identity models.Identity) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if identity.Demo {
		return nil, errs.ErrDemoReadOnly
	}
	if clientID == "" || identity.ID == "" {
		return nil, errors.New("session: client id and identity id are required")
	}

	now := m.now()
	s := &models.Session{
		ID:         uuid.NewString(),
		ClientID:   clientID,
		IdentityID: identity.ID,
		Email:      identity.Email,
		ExpiresAt:  now.Add(m.ttl),
	}
	token, err := m.sign(s, now)
	if err != nil {
		return nil, err
	}
	s.Token = token

	m.mu.Lock()
	snap, subs := m.setLocked(clientID, s)
	m.mu.Unlock()

	m.log.Info("session created", zap.String("session_id", s.ID), zap.String("identity_id", s.IdentityID))
	deliver(subs, snap)
	return copySession(s), nil
}

// Refresh extends the client's session and issues a new token for it.
func (m *Manager) Refresh(ctx context.Context, clientID string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	cur, ok := m.clients[clientID]
	now := m.now()
	if !ok || cur.Expired(now) {
		m.mu.Unlock()
		return nil, errs.ErrNotAuthenticated
	}
	s := copySession(cur)
	s.ExpiresAt = now.Add(m.ttl)
	token, err := m.sign(s, now)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	s.Token = token
	snap, subs := m.setLocked(clientID, s)
	m.mu.Unlock()

	deliver(subs, snap)
	return copySession(s), nil
}

// SignOut ends the client's session, if any.
func (m *Manager) SignOut(ctx context.Context, clientID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	if _, ok := m.clients[clientID]; !ok {
		m.mu.Unlock()
		return nil
	}
	snap, subs := m.setLocked(clientID, nil)
	m.mu.Unlock()

	deliver(subs, snap)
	return nil
}

// Authenticate validates a bearer token and returns its session if it is
// still the active session of its client.
func (m *Manager) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	claims, err := m.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	clientID, ok := m.bySession[claims.ID]
	var s *models.Session
	if ok {
		s = m.clients[clientID]
	}
	m.mu.Unlock()

	if s == nil || s.Token != token {
		return nil, errs.ErrNotAuthenticated
	}
	return m.CurrentSessionOf(ctx, clientID)
}

// CurrentSessionOf is CurrentSession that fails with errs.ErrNotAuthenticated
// when the client has no session.
func (m *Manager) CurrentSessionOf(ctx context.Context, clientID string) (*models.Session, error) {
	snap, err := m.CurrentSession(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if snap.Session == nil {
		return nil, errs.ErrNotAuthenticated
	}
	return snap.Session, nil
}

// ValidateToken parses and verifies a session token.
func (m *Manager) ValidateToken(token string) (*Claims, error) {
	if token == "" {
		return nil, errs.ErrNotAuthenticated
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", errs.ErrNotAuthenticated, err)
	}
	return claims, nil
}

// ExpireStale drops every session past its expiry and notifies subscribers.
// It returns the number of sessions dropped.
func (m *Manager) ExpireStale() int {
	type change struct {
		snap Snapshot
		subs []*subscriber
	}

	m.mu.Lock()
	now := m.now()
	var changes []change
	for clientID, s := range m.clients {
		if !s.Expired(now) {
			continue
		}
		snap, subs := m.setLocked(clientID, nil)
		changes = append(changes, change{snap: snap, subs: subs})
	}
	m.mu.Unlock()

	for _, c := range changes {
		deliver(c.subs, c.snap)
	}
	return len(changes)
}

func (m *Manager) sign(s *models.Session, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   s.IdentityID,
			ID:        s.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
		Email: s.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// setLocked stores s (nil clears) as clientID's session, bumps the revision and
// returns the snapshot to deliver with the current subscribers. m.mu must be held.
func (m *Manager) setLocked(clientID string, s *models.Session) (Snapshot, []*subscriber) {
	if old, ok := m.clients[clientID]; ok {
		delete(m.bySession, old.ID)
	}
	if s == nil {
		delete(m.clients, clientID)
	} else {
		m.clients[clientID] = s
		m.bySession[s.ID] = clientID
	}
	m.rev++

	subs := make([]*subscriber, 0, len(m.subs[clientID]))
	for _, sub := range m.subs[clientID] {
		subs = append(subs, sub)
	}
	return Snapshot{Session: copySession(s), Revision: m.rev}, subs
}

func (m *Manager) remove(clientID string, id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs[clientID], id)
	if len(m.subs[clientID]) == 0 {
		delete(m.subs, clientID)
	}
}

func copySession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

type subscriber struct {
	mu     sync.Mutex
	closed bool
	fn     func(Snapshot)
}

func (s *subscriber) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.fn(snap)
}

func deliver(subs []*subscriber, snap Snapshot) {
	for _, sub := range subs {
		sub.deliver(snap)
	}
}

type subscription struct {
	m        *Manager
	clientID string
	id       uint64
	sub      *subscriber
	once     sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.m.remove(s.clientID, s.id)
		// Taking the lock waits out a callback that is already running.
		s.sub.mu.Lock()
		s.sub.closed = true
		s.sub.mu.Unlock()
	})
}
