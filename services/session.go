package services

import (
	"log"
	"sync"

	"tournament-signup-system/models"
)

// ClaimsSource yields ID tokens with custom claims. forceRefresh must
// bypass any token cache.
type ClaimsSource interface {
	IDTokenResult(uid string, forceRefresh bool) (*IDTokenResult, error)
}

// ProfileSource fetches the stored profile document for a uid. A missing
// document is (nil, nil).
type ProfileSource interface {
	GetUserDocument(uid string) (*models.User, error)
}

// SessionSnapshot is the read-only "who is signed in and what can they do"
// tuple for one session.
type SessionSnapshot struct {
	Identity *Identity    `json:"identity,omitempty"`
	Profile  *models.User `json:"profile,omitempty"`
	IsAdmin  bool         `json:"isAdmin"`
	Loading  bool         `json:"loading"`
}

// SessionManager reconciles three sources of truth — identity-provider
// session, admin claim and profile document — into one snapshot. Claims are
// only trustworthy immediately after an explicit refresh, so every
// reconciliation forces a fresh claim fetch. Any fetch error degrades the
// snapshot (isAdmin false, profile absent) instead of propagating: the
// manager always yields a usable, if conservative, state.
type SessionManager struct {
	claims   ClaimsSource
	profiles ProfileSource

	mu   sync.RWMutex
	snap SessionSnapshot
	subs []func(SessionSnapshot)
}

func NewSessionManager(claims ClaimsSource, profiles ProfileSource) *SessionManager {
	return &SessionManager{
		claims:   claims,
		profiles: profiles,
		snap:     SessionSnapshot{Loading: true},
	}
}

// Subscribe registers fn to be called with every published snapshot.
func (m *SessionManager) Subscribe(fn func(SessionSnapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

// Snapshot returns the current reconciled state.
func (m *SessionManager) Snapshot() SessionSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snap
}

// HandleSessionChange rebuilds the snapshot for a new session state from
// the identity provider. A nil identity clears it (sign-out).
func (m *SessionManager) HandleSessionChange(ident *Identity) {
	m.setLoading(true)
	m.publish(m.reconcile(ident))
}

// Refresh re-runs reconciliation for the currently-known identity. It is a
// no-op when no identity is present.
func (m *SessionManager) Refresh() {
	m.mu.RLock()
	ident := m.snap.Identity
	m.mu.RUnlock()
	if ident == nil {
		return
	}
	m.setLoading(true)
	m.publish(m.reconcile(ident))
}

func (m *SessionManager) reconcile(ident *Identity) SessionSnapshot {
	if ident == nil {
		return SessionSnapshot{}
	}
	snap := SessionSnapshot{Identity: ident}

	// Force the claim fetch: a cached token can under-report admin right
	// after a promotion.
	tok, err := m.claims.IDTokenResult(ident.UID, true)
	if err != nil {
		log.Printf("⚠️ [SESSION] claims refresh failed for %s: %v", ident.UID, err)
	} else {
		snap.IsAdmin = tok.Admin
	}

	profile, err := m.profiles.GetUserDocument(ident.UID)
	if err != nil {
		log.Printf("⚠️ [SESSION] profile fetch failed for %s: %v", ident.UID, err)
	} else {
		snap.Profile = profile // nil when absent; not an error
	}
	return snap
}

func (m *SessionManager) setLoading(v bool) {
	m.mu.Lock()
	m.snap.Loading = v
	m.mu.Unlock()
}

func (m *SessionManager) publish(snap SessionSnapshot) {
	m.mu.Lock()
	m.snap = snap
	subs := make([]func(SessionSnapshot), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

// SessionRegistry routes identity-provider session events to per-user
// session managers, creating one on first sign-in and dropping it when the
// session ends.
type SessionRegistry struct {
	claims   ClaimsSource
	profiles ProfileSource

	mu       sync.Mutex
	sessions map[string]*SessionManager
}

func NewSessionRegistry(claims ClaimsSource, profiles ProfileSource) *SessionRegistry {
	return &SessionRegistry{
		claims:   claims,
		profiles: profiles,
		sessions: make(map[string]*SessionManager),
	}
}

// HandleSessionEvent is wired to IdentityService.OnSessionChange.
func (r *SessionRegistry) HandleSessionEvent(ev SessionEvent) {
	if ev.Identity == nil {
		r.mu.Lock()
		m, ok := r.sessions[ev.UID]
		delete(r.sessions, ev.UID)
		r.mu.Unlock()
		if ok {
			m.HandleSessionChange(nil)
		}
		return
	}
	m := r.manager(ev.Identity)
	m.HandleSessionChange(ev.Identity)
}

// Snapshot returns the snapshot for ident's session, reconciling a fresh
// manager first if the registry has never seen this session (for example
// after a restart, when the token outlived the process).
func (r *SessionRegistry) Snapshot(ident *Identity) SessionSnapshot {
	r.mu.Lock()
	m, ok := r.sessions[ident.UID]
	r.mu.Unlock()
	if !ok {
		m = r.manager(ident)
		m.HandleSessionChange(ident)
	}
	return m.Snapshot()
}

// Refresh re-reconciles ident's session on demand (the pull-to-refresh
// path) and returns the resulting snapshot.
func (r *SessionRegistry) Refresh(ident *Identity) SessionSnapshot {
	r.mu.Lock()
	m, ok := r.sessions[ident.UID]
	r.mu.Unlock()
	if !ok {
		m = r.manager(ident)
		m.HandleSessionChange(ident)
		return m.Snapshot()
	}
	m.Refresh()
	return m.Snapshot()
}

// RefreshAll re-reconciles every registered session and reports how many
// were refreshed.
func (r *SessionRegistry) RefreshAll() int {
	r.mu.Lock()
	managers := make([]*SessionManager, 0, len(r.sessions))
	for _, m := range r.sessions {
		managers = append(managers, m)
	}
	r.mu.Unlock()
	for _, m := range managers {
		m.Refresh()
	}
	return len(managers)
}

func (r *SessionRegistry) manager(ident *Identity) *SessionManager {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.sessions[ident.UID]; ok {
		return m
	}
	m := NewSessionManager(r.claims, r.profiles)
	r.sessions[ident.UID] = m
	return m
}
