package notification_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/service/feed"
	"github.com/jwalitptl/petmatch-api/internal/service/notification"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

type fakeNotificationRepo struct {
	mu         sync.Mutex
	rows       []*model.Notification
	replaceErr error
	deleteErr  error
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (f *fakeNotificationRepo) Replace(ctx context.Context, n *model.Notification) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.replaceErr != nil {
		return 0, f.replaceErr
	}

	var kept []*model.Notification
	var superseded int64
	for _, row := range f.rows {
		if row.UserID == n.UserID && row.Type == n.Type &&
			sameRef(row.SenderID, n.SenderID) && sameRef(row.ReferenceID, n.ReferenceID) {
			superseded++
			continue
		}
		kept = append(kept, row)
	}

	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	f.rows = append(kept, n)
	return superseded, nil
}

func (f *fakeNotificationRepo) seed(n *model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	f.rows = append(f.rows, n)
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Notification
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) ListRecent(ctx context.Context, limit int) ([]*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*model.Notification
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}

func (f *fakeNotificationRepo) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return 0, f.deleteErr
	}

	doomed := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	var kept []*model.Notification
	var deleted int64
	for _, row := range f.rows {
		if doomed[row.ID] {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	f.rows = kept
	return deleted, nil
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.ID == id {
			row.IsRead = true
			return row, nil
		}
	}
	return nil, fmt.Errorf("notification not found")
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var updated int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.IsRead {
			row.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeNotificationRepo) ExistsNewerThan(ctx context.Context, userID uuid.UUID, since time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, row := range f.rows {
		if row.UserID == userID && row.CreatedAt.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotificationRepo) ListActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, row := range f.rows {
		if row.CreatedAt.After(since) && !seen[row.UserID] {
			seen[row.UserID] = true
			out = append(out, row.UserID)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakePetRepo struct {
	existing map[uuid.UUID]bool
	err      error
}

func (f *fakePetRepo) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	return nil, fmt.Errorf("not implemented")
}

func (f *fakePetRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.existing[id], nil
}

func (f *fakePetRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	return nil, nil
}

func (f *fakePetRepo) ListCandidates(ctx context.Context, excludeIDs []uuid.UUID, filters *model.CandidateFilters) ([]*model.Pet, error) {
	return nil, nil
}

type fakeConversationRepo struct {
	existing map[uuid.UUID]bool
}

func (f *fakeConversationRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.existing[id], nil
}

type published struct {
	channel string
	event   feed.Event
}

type fakeBroker struct {
	mu   sync.Mutex
	msgs []published
}

func (f *fakeBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return err
	}
	var event feed.Event
	if err := json.Unmarshal(raw, &event); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, published{channel: channel, event: event})
	return nil
}

func (f *fakeBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch := make(chan []byte)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (f *fakeBroker) Close() error { return nil }

func (f *fakeBroker) events() []published {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]published(nil), f.msgs...)
}

type testEnv struct {
	svc           notification.Service
	repo          *fakeNotificationRepo
	pets          *fakePetRepo
	conversations *fakeConversationRepo
	broker        *fakeBroker
}

func newTestEnv() *testEnv {
	repo := &fakeNotificationRepo{}
	pets := &fakePetRepo{existing: make(map[uuid.UUID]bool)}
	conversations := &fakeConversationRepo{existing: make(map[uuid.UUID]bool)}
	broker := &fakeBroker{}

	logg := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewMetricsWith(prometheus.NewRegistry(), "petmatch", "test")
	publisher := feed.NewPublisher(broker, logg)

	return &testEnv{
		svc:           notification.NewService(repo, pets, conversations, publisher, m, logg),
		repo:          repo,
		pets:          pets,
		conversations: conversations,
		broker:        broker,
	}
}
