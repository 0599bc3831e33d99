package match_test

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/service/match"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

type fakePetRepo struct {
	pets map[uuid.UUID]*model.Pet
}

func newFakePetRepo() *fakePetRepo {
	return &fakePetRepo{pets: make(map[uuid.UUID]*model.Pet)}
}

func (f *fakePetRepo) add(p *model.Pet) *model.Pet {
	f.pets[p.ID] = p
	return p
}

func (f *fakePetRepo) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	p, ok := f.pets[id]
	if !ok {
		return nil, fmt.Errorf("pet not found")
	}
	return p, nil
}

func (f *fakePetRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.pets[id]
	return ok, nil
}

func (f *fakePetRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	var out []*model.Pet
	for _, p := range f.pets {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePetRepo) ListCandidates(ctx context.Context, excludeIDs []uuid.UUID, filters *model.CandidateFilters) ([]*model.Pet, error) {
	excluded := make(map[uuid.UUID]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	var out []*model.Pet
	for _, p := range f.pets {
		if excluded[p.ID] {
			continue
		}
		if filters.Species != "" && p.Species != filters.Species {
			continue
		}
		if filters.Gender != "" && p.Gender != filters.Gender {
			continue
		}
		out = append(out, p)
		if filters.Limit > 0 && len(out) == filters.Limit {
			break
		}
	}
	return out, nil
}

type fakeInterestRepo struct {
	mu   sync.Mutex
	rows []*model.Interest
}

func (f *fakeInterestRepo) Create(ctx context.Context, interest *model.Interest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == interest.UserID && row.PetID == interest.PetID {
			return nil
		}
	}
	interest.ID = uuid.New()
	f.rows = append(f.rows, interest)
	return nil
}

func (f *fakeInterestRepo) Exists(ctx context.Context, userID, petID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == userID && row.PetID == petID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInterestRepo) ListPetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []uuid.UUID
	for _, row := range f.rows {
		if row.UserID == userID {
			out = append(out, row.PetID)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user not found")
	}
	return u, nil
}

type matchCall struct {
	userID, senderID, petID uuid.UUID
}

// fakeNotifier records match and interest fan-out; the other factory
// methods are unused by the match service.
type fakeNotifier struct {
	mu        sync.Mutex
	matches   []matchCall
	interests []matchCall
	err       error
}

func (f *fakeNotifier) CreateMatch(ctx context.Context, userID, senderID, petID uuid.UUID) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.matches = append(f.matches, matchCall{userID: userID, senderID: senderID, petID: petID})
	return &model.Notification{ID: uuid.New(), UserID: userID, Type: model.NotificationTypeMatch}, nil
}

func (f *fakeNotifier) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeNotifier) CreateMessage(ctx context.Context, userID, senderID, conversationID uuid.UUID) (*model.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeNotifier) CreateInterest(ctx context.Context, userID, senderID, petID uuid.UUID) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.interests = append(f.interests, matchCall{userID: userID, senderID: senderID, petID: petID})
	return &model.Notification{ID: uuid.New(), UserID: userID, Type: model.NotificationTypeInterest}, nil
}

func (f *fakeNotifier) List(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakeNotifier) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func (f *fakeNotifier) CleanupDuplicates(ctx context.Context, userID uuid.UUID) (*model.CleanupResult, error) {
	return &model.CleanupResult{}, nil
}

func (f *fakeNotifier) FindInvalid(ctx context.Context) ([]*model.InvalidNotification, error) {
	return nil, nil
}

func (f *fakeNotifier) DeleteInvalid(ctx context.Context, ids []uuid.UUID) *model.DeleteResult {
	return &model.DeleteResult{Success: true}
}

func (f *fakeNotifier) calls() []matchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]matchCall(nil), f.matches...)
}

func (f *fakeNotifier) interestCalls() []matchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]matchCall(nil), f.interests...)
}

type sentMail struct {
	to, petName, otherPetName string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendMatchAlert(ctx context.Context, to, petName, otherPetName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to: to, petName: petName, otherPetName: otherPetName})
	return nil
}

type matchEnv struct {
	svc       match.Service
	pets      *fakePetRepo
	interests *fakeInterestRepo
	users     *fakeUserRepo
	notifier  *fakeNotifier
	mailer    *fakeMailer
}

func newMatchEnv() *matchEnv {
	pets := newFakePetRepo()
	interests := &fakeInterestRepo{}
	users := &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
	notifier := &fakeNotifier{}
	mailer := &fakeMailer{}

	logg := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "petmatch", "test")

	return &matchEnv{
		svc:       match.NewService(pets, interests, users, notifier, mailer, m, logg, 20),
		pets:      pets,
		interests: interests,
		users:     users,
		notifier:  notifier,
		mailer:    mailer,
	}
}
