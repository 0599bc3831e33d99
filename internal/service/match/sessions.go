package match

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/petmatch-api/internal/model"
)

// Manager tracks the active swipe session per user. Sessions live in
// memory and expire after idleTTL without activity; starting a new
// session replaces the old one.
type Manager struct {
	sessions *cache.Cache
	svc      Service
	idleTTL  time.Duration
}

func NewManager(svc Service, idleTTL time.Duration) *Manager {
	return &Manager{
		sessions: cache.New(idleTTL, 2*idleTTL),
		svc:      svc,
		idleTTL:  idleTTL,
	}
}

// Start opens a fresh session for userID swiping as pet and loads the
// first candidate batch.
func (m *Manager) Start(ctx context.Context, userID uuid.UUID, pet *model.Pet) (*Session, error) {
	session := newSession(userID, pet, m.svc)
	if err := session.Refresh(ctx); err != nil {
		return nil, err
	}
	m.sessions.Set(userID.String(), session, cache.DefaultExpiration)
	return session, nil
}

// Get returns the user's active session, bumping its expiry.
func (m *Manager) Get(userID uuid.UUID) (*Session, bool) {
	key := userID.String()
	v, found := m.sessions.Get(key)
	if !found {
		return nil, false
	}
	m.sessions.Set(key, v, cache.DefaultExpiration)
	return v.(*Session), true
}
