package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/repository"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	"github.com/jwalitptl/petmatch-api/pkg/messaging"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

type EventKind string

const (
	// EventInsert signals a new notification; clients refetch the list.
	EventInsert EventKind = "insert"
	// EventUpdate carries a modified notification to patch in place.
	EventUpdate EventKind = "update"
	// EventRefresh tells clients to refetch without a specific row,
	// emitted by the backstop poll and bulk operations.
	EventRefresh EventKind = "refresh"
)

type Event struct {
	Kind         EventKind           `json:"kind"`
	Notification *model.Notification `json:"notification,omitempty"`
}

func channelFor(userID uuid.UUID) string {
	return fmt.Sprintf("notifications:%s", userID)
}

// Publisher pushes feed events onto each user's channel. Delivery is
// best-effort: the backstop poll covers anything that gets lost.
type Publisher struct {
	broker messaging.Broker
	logger *logger.Logger
}

func NewPublisher(broker messaging.Broker, logger *logger.Logger) *Publisher {
	return &Publisher{broker: broker, logger: logger}
}

func (p *Publisher) NotifyInsert(ctx context.Context, notification *model.Notification) {
	p.publish(ctx, notification.UserID, Event{Kind: EventInsert, Notification: notification})
}

func (p *Publisher) NotifyUpdate(ctx context.Context, notification *model.Notification) {
	p.publish(ctx, notification.UserID, Event{Kind: EventUpdate, Notification: notification})
}

func (p *Publisher) NotifyRefresh(ctx context.Context, userID uuid.UUID) {
	p.publish(ctx, userID, Event{Kind: EventRefresh})
}

func (p *Publisher) publish(ctx context.Context, userID uuid.UUID, event Event) {
	if err := p.broker.Publish(ctx, channelFor(userID), event); err != nil {
		p.logger.Error(err, "failed to publish feed event")
	}
}

// Feed hands out realtime subscriptions to per-user notification streams.
type Feed struct {
	broker       messaging.Broker
	repo         repository.NotificationRepository
	metrics      *metrics.Metrics
	logger       *logger.Logger
	retryBackoff time.Duration
	pollInterval time.Duration
}

func NewFeed(broker messaging.Broker, repo repository.NotificationRepository, m *metrics.Metrics, logger *logger.Logger, retryBackoff, pollInterval time.Duration) *Feed {
	return &Feed{
		broker:       broker,
		repo:         repo,
		metrics:      m,
		logger:       logger,
		retryBackoff: retryBackoff,
		pollInterval: pollInterval,
	}
}

// Subscription is a live handle on one user's feed. Events stop and the
// channel closes once Close is called; Close is safe to call twice.
type Subscription struct {
	events chan Event
	cancel context.CancelFunc
	once   sync.Once
	done   chan struct{}
}

func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Subscribe opens a realtime stream for userID. The broker subscription
// is retried until it sticks, and a periodic poll against the store
// emits refresh events for anything pub/sub missed.
func (f *Feed) Subscribe(ctx context.Context, userID uuid.UUID) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		events: make(chan Event, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}

	f.metrics.FeedSubscriptions.Inc()

	go func() {
		defer func() {
			f.metrics.FeedSubscriptions.Dec()
			close(sub.events)
			close(sub.done)
		}()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.consume(ctx, userID, sub)
		}()
		go func() {
			defer wg.Done()
			f.poll(ctx, userID, sub)
		}()
		wg.Wait()
	}()

	return sub
}

func (f *Feed) consume(ctx context.Context, userID uuid.UUID, sub *Subscription) {
	channel := channelFor(userID)

	for {
		msgs, err := f.broker.Subscribe(ctx, channel)
		if err != nil {
			f.logger.Error(err, "feed subscribe failed, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(f.retryBackoff):
				continue
			}
		}

		for msg := range msgs {
			var event Event
			if err := json.Unmarshal(msg, &event); err != nil {
				f.logger.Error(err, "failed to decode feed event")
				continue
			}
			f.emit(ctx, sub, event)
		}

		// Channel closed without ctx being done means the broker
		// connection dropped; resubscribe.
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func (f *Feed) poll(ctx context.Context, userID uuid.UUID, sub *Subscription) {
	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	lastCheck := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			hasNew, err := f.repo.ExistsNewerThan(ctx, userID, lastCheck)
			f.metrics.FeedPollLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				f.logger.Error(err, "feed backstop poll failed")
				continue
			}
			// Advance to the query start, not the current time: a row
			// committed while the query ran must show up next poll. The
			// overlap can repeat a refresh, never lose one.
			lastCheck = start
			if hasNew {
				f.emit(ctx, sub, Event{Kind: EventRefresh})
			}
		}
	}
}

func (f *Feed) emit(ctx context.Context, sub *Subscription, event Event) {
	select {
	case <-ctx.Done():
	case sub.events <- event:
		f.metrics.FeedEvents.WithLabelValues(string(event.Kind)).Inc()
	}
}
