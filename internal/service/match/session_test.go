package match_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/service/match"
)

// stubSwipeService feeds sessions canned candidate queues and like
// outcomes.
type stubSwipeService struct {
	queues     [][]*model.Pet
	likeResult *match.LikeResult
	likeErr    error
	dislikes   []uuid.UUID
}

func (s *stubSwipeService) Candidates(ctx context.Context, userID uuid.UUID, selected *model.Pet) ([]*model.Pet, error) {
	if len(s.queues) == 0 {
		return nil, nil
	}
	queue := s.queues[0]
	s.queues = s.queues[1:]
	return queue, nil
}

func (s *stubSwipeService) Like(ctx context.Context, userID uuid.UUID, currentPet, targetPet *model.Pet) (*match.LikeResult, error) {
	if s.likeErr != nil {
		return nil, s.likeErr
	}
	if s.likeResult != nil {
		return s.likeResult, nil
	}
	return &match.LikeResult{Compatible: true}, nil
}

func (s *stubSwipeService) Dislike(targetPetID uuid.UUID) {
	s.dislikes = append(s.dislikes, targetPetID)
}

func (s *stubSwipeService) ShowInterest(ctx context.Context, userID, targetPetID uuid.UUID) error {
	return nil
}

func (s *stubSwipeService) Pet(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	return nil, nil
}

func (s *stubSwipeService) OwnedPets(ctx context.Context, userID uuid.UUID) ([]*model.Pet, error) {
	return nil, nil
}

func somePets(n int) []*model.Pet {
	pets := make([]*model.Pet, n)
	for i := range pets {
		pets[i] = &model.Pet{ID: uuid.New(), Species: "dog", Gender: model.PetGenderFemale}
	}
	return pets
}

func startSession(t *testing.T, stub *stubSwipeService) *match.Session {
	t.Helper()
	manager := match.NewManager(stub, time.Minute)
	session, err := manager.Start(context.Background(), uuid.New(), &model.Pet{
		ID:      uuid.New(),
		Species: "dog",
		Gender:  model.PetGenderMale,
	})
	require.NoError(t, err)
	return session
}

func TestSessionExhaustedWhenNoCandidates(t *testing.T) {
	session := startSession(t, &stubSwipeService{})

	current, state := session.Current()
	assert.Nil(t, current)
	assert.Equal(t, match.StateExhausted, state)
}

func TestDislikeAlwaysAdvances(t *testing.T) {
	queue := somePets(2)
	stub := &stubSwipeService{queues: [][]*model.Pet{queue}}
	session := startSession(t, stub)

	current, state := session.Current()
	require.Equal(t, match.StateReady, state)
	assert.Equal(t, queue[0].ID, current.ID)

	require.NoError(t, session.Dislike(context.Background()))
	current, state = session.Current()
	require.Equal(t, match.StateReady, state)
	assert.Equal(t, queue[1].ID, current.ID)

	require.NoError(t, session.Dislike(context.Background()))
	_, state = session.Current()
	assert.Equal(t, match.StateExhausted, state)

	assert.Equal(t, []uuid.UUID{queue[0].ID, queue[1].ID}, stub.dislikes)
}

func TestCompatibleLikeAdvances(t *testing.T) {
	queue := somePets(2)
	stub := &stubSwipeService{queues: [][]*model.Pet{queue}}
	session := startSession(t, stub)

	result, err := session.Like(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Compatible)

	current, state := session.Current()
	require.Equal(t, match.StateReady, state)
	assert.Equal(t, queue[1].ID, current.ID)
}

func TestIncompatibleLikeHoldsCursor(t *testing.T) {
	queue := somePets(2)
	stub := &stubSwipeService{
		queues:     [][]*model.Pet{queue},
		likeResult: &match.LikeResult{Reason: match.ReasonSameGender},
	}
	session := startSession(t, stub)

	result, err := session.Like(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Compatible)

	// Cursor stays on the incompatible pet until acknowledged.
	current, _ := session.Current()
	assert.Equal(t, queue[0].ID, current.ID)

	_, err = session.Like(context.Background())
	require.Error(t, err)

	require.NoError(t, session.AcknowledgeIncompatible())
	current, _ = session.Current()
	assert.Equal(t, queue[1].ID, current.ID)
}

func TestDislikeBlockedUntilAcknowledged(t *testing.T) {
	queue := somePets(2)
	stub := &stubSwipeService{
		queues:     [][]*model.Pet{queue},
		likeResult: &match.LikeResult{Reason: match.ReasonSameGender},
	}
	session := startSession(t, stub)

	_, err := session.Like(context.Background())
	require.NoError(t, err)

	// Dislike cannot skip past the incompatibility notice either.
	require.Error(t, session.Dislike(context.Background()))
	current, _ := session.Current()
	assert.Equal(t, queue[0].ID, current.ID)
	assert.Empty(t, stub.dislikes)

	require.NoError(t, session.AcknowledgeIncompatible())
	require.NoError(t, session.Dislike(context.Background()))
}

func TestAcknowledgeWithoutIncompatibilityFails(t *testing.T) {
	stub := &stubSwipeService{queues: [][]*model.Pet{somePets(1)}}
	session := startSession(t, stub)

	assert.Error(t, session.AcknowledgeIncompatible())
}

func TestSwipeActionsFailWhenExhausted(t *testing.T) {
	session := startSession(t, &stubSwipeService{})

	_, err := session.Like(context.Background())
	assert.Error(t, err)
	assert.Error(t, session.Dislike(context.Background()))
}

func TestRefreshReloadsQueue(t *testing.T) {
	first := somePets(1)
	second := somePets(2)
	stub := &stubSwipeService{queues: [][]*model.Pet{first, second}}
	session := startSession(t, stub)

	require.NoError(t, session.Dislike(context.Background()))
	_, state := session.Current()
	require.Equal(t, match.StateExhausted, state)

	require.NoError(t, session.Refresh(context.Background()))
	current, state := session.Current()
	require.Equal(t, match.StateReady, state)
	assert.Equal(t, second[0].ID, current.ID)
}

func TestManagerReplacesSessionOnStart(t *testing.T) {
	stub := &stubSwipeService{queues: [][]*model.Pet{somePets(1), somePets(1)}}
	manager := match.NewManager(stub, time.Minute)
	userID := uuid.New()
	petA := &model.Pet{ID: uuid.New(), Species: "dog", Gender: model.PetGenderMale}
	petB := &model.Pet{ID: uuid.New(), Species: "dog", Gender: model.PetGenderFemale}

	_, err := manager.Start(context.Background(), userID, petA)
	require.NoError(t, err)

	replacement, err := manager.Start(context.Background(), userID, petB)
	require.NoError(t, err)

	got, found := manager.Get(userID)
	require.True(t, found)
	assert.Same(t, replacement, got)
	assert.Equal(t, petB.ID, got.SwipingWith().ID)
}

func TestManagerGetMissingSession(t *testing.T) {
	manager := match.NewManager(&stubSwipeService{}, time.Minute)

	_, found := manager.Get(uuid.New())
	assert.False(t, found)
}
