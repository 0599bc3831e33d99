package match

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/pkg/errors"
)

type SessionState string

const (
	StateLoading   SessionState = "loading"
	StateReady     SessionState = "ready"
	StateExhausted SessionState = "exhausted"
)

// Session is one user's swipe run with a chosen pet. The cursor only
// moves forward: on a dislike, on a compatible like, or when the user
// acknowledges an incompatibility notice. An incompatible like pins the
// cursor so the reason stays on screen; further swipes are rejected
// until the user acknowledges.
type Session struct {
	mu      sync.Mutex
	userID  uuid.UUID
	pet     *model.Pet
	svc     Service
	state   SessionState
	queue   []*model.Pet
	cursor  int
	blocked bool
}

func newSession(userID uuid.UUID, pet *model.Pet, svc Service) *Session {
	return &Session{
		userID: userID,
		pet:    pet,
		svc:    svc,
		state:  StateLoading,
	}
}

// Refresh reloads the candidate queue and resets the cursor. Pets
// already swiped on are excluded by the candidate query, so a refresh
// after exhaustion surfaces only new arrivals.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateLoading
	candidates, err := s.svc.Candidates(ctx, s.userID, s.pet)
	if err != nil {
		s.state = StateExhausted
		return err
	}

	s.queue = candidates
	s.cursor = 0
	s.blocked = false
	if len(s.queue) == 0 {
		s.state = StateExhausted
	} else {
		s.state = StateReady
	}
	return nil
}

// Current returns the pet under the cursor and the session state.
func (s *Session) Current() (*model.Pet, SessionState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, s.state
	}
	return s.queue[s.cursor], s.state
}

// SwipingWith returns the pet this session swipes as.
func (s *Session) SwipingWith() *model.Pet {
	return s.pet
}

func (s *Session) Like(ctx context.Context) (*LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return nil, errors.NewBadRequest("no candidate to swipe on", nil)
	}
	if s.blocked {
		return nil, errors.NewBadRequest("acknowledge the incompatibility first", nil)
	}

	target := s.queue[s.cursor]
	result, err := s.svc.Like(ctx, s.userID, s.pet, target)
	if err != nil {
		return nil, err
	}

	if result.Compatible {
		s.advanceLocked()
	} else {
		s.blocked = true
	}
	return result, nil
}

func (s *Session) Dislike(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateReady {
		return errors.NewBadRequest("no candidate to swipe on", nil)
	}
	if s.blocked {
		return errors.NewBadRequest("acknowledge the incompatibility first", nil)
	}

	s.svc.Dislike(s.queue[s.cursor].ID)
	s.advanceLocked()
	return nil
}

// AcknowledgeIncompatible moves past a pet that failed the
// compatibility check.
func (s *Session) AcknowledgeIncompatible() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.blocked {
		return errors.NewBadRequest("nothing to acknowledge", nil)
	}
	s.blocked = false
	s.advanceLocked()
	return nil
}

func (s *Session) advanceLocked() {
	s.cursor++
	if s.cursor >= len(s.queue) {
		s.state = StateExhausted
	}
}
