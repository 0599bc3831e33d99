package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/repository"
	"github.com/jwalitptl/petmatch-api/internal/service/feed"
	"github.com/jwalitptl/petmatch-api/pkg/errors"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

const (
	refCacheTTL     = 5 * time.Minute
	refCacheCleanup = 10 * time.Minute

	contentMatch    = "It's a match! You and another owner liked each other's pets 🎉"
	contentMessage  = "You have a new message"
	contentInterest = "Someone showed interest in your pet"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	CreateMatch(ctx context.Context, userID, senderID, petID uuid.UUID) (*model.Notification, error)
	CreateMessage(ctx context.Context, userID, senderID, conversationID uuid.UUID) (*model.Notification, error)
	CreateInterest(ctx context.Context, userID, senderID, petID uuid.UUID) (*model.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	CleanupDuplicates(ctx context.Context, userID uuid.UUID) (*model.CleanupResult, error)
	FindInvalid(ctx context.Context) ([]*model.InvalidNotification, error)
	DeleteInvalid(ctx context.Context, ids []uuid.UUID) *model.DeleteResult
}

type service struct {
	repo          repository.NotificationRepository
	pets          repository.PetRepository
	conversations repository.ConversationRepository
	refCache      *cache.Cache
	publisher     *feed.Publisher
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

func NewService(repo repository.NotificationRepository, pets repository.PetRepository, conversations repository.ConversationRepository, publisher *feed.Publisher, m *metrics.Metrics, logger *logger.Logger) Service {
	return &service{
		repo:          repo,
		pets:          pets,
		conversations: conversations,
		refCache:      cache.New(refCacheTTL, refCacheCleanup),
		publisher:     publisher,
		metrics:       m,
		logger:        logger,
	}
}

// Create validates the request, supersedes older notifications carrying
// the same key and inserts the new row. A reference that fails
// validation is nulled out rather than failing the whole write.
func (s *service) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	if req.UserID == uuid.Nil {
		s.metrics.NotificationsDropped.WithLabelValues("missing_user").Inc()
		return nil, errors.NewBadRequest("user ID is required", nil)
	}
	if !req.Type.Valid() {
		s.metrics.NotificationsDropped.WithLabelValues("invalid_type").Inc()
		return nil, errors.NewBadRequest(fmt.Sprintf("invalid notification type: %s", req.Type), nil)
	}

	referenceID := req.ReferenceID
	if referenceID != nil {
		ok, err := s.referenceExists(ctx, req.Type, *referenceID)
		if err != nil || !ok {
			if err != nil {
				s.logger.Error(err, "reference validation failed, clearing reference")
			} else {
				s.logger.Warn("notification reference does not exist, clearing reference")
			}
			s.metrics.ReferenceChecksFailed.WithLabelValues(string(req.Type)).Inc()
			referenceID = nil
		}
	}

	content := req.Content
	if content == "" || req.Type == model.NotificationTypeMessage {
		// Message notifications never carry the message body, only the
		// generic alert, regardless of what the caller supplied.
		content = defaultContent(req.Type)
	}

	notification := &model.Notification{
		UserID:      req.UserID,
		Type:        req.Type,
		SenderID:    req.SenderID,
		Content:     &content,
		ReferenceID: referenceID,
		Data:        req.Data,
	}

	superseded, err := s.repo.Replace(ctx, notification)
	if err != nil {
		s.metrics.NotificationsDropped.WithLabelValues("store_error").Inc()
		return nil, errors.NewInternal(fmt.Errorf("failed to store notification: %w", err))
	}

	s.metrics.NotificationsCreated.WithLabelValues(string(notification.Type)).Inc()
	if superseded > 0 {
		s.metrics.NotificationsSuperseded.Add(float64(superseded))
	}

	s.publisher.NotifyInsert(ctx, notification)

	return notification, nil
}

// CreateMatch notifies userID that one of their pets matched. The
// notification references the other side's pet so the celebration
// shows who the match is with.
func (s *service) CreateMatch(ctx context.Context, userID, senderID, petID uuid.UUID) (*model.Notification, error) {
	return s.Create(ctx, &model.CreateNotificationRequest{
		UserID:      userID,
		Type:        model.NotificationTypeMatch,
		SenderID:    &senderID,
		ReferenceID: &petID,
		Data:        model.MatchData(petID),
	})
}

// CreateMessage never includes the message body; recipients only learn
// that something arrived in the conversation.
func (s *service) CreateMessage(ctx context.Context, userID, senderID, conversationID uuid.UUID) (*model.Notification, error) {
	return s.Create(ctx, &model.CreateNotificationRequest{
		UserID:      userID,
		Type:        model.NotificationTypeMessage,
		SenderID:    &senderID,
		ReferenceID: &conversationID,
		Data:        model.MessageData(conversationID),
	})
}

func (s *service) CreateInterest(ctx context.Context, userID, senderID, petID uuid.UUID) (*model.Notification, error) {
	return s.Create(ctx, &model.CreateNotificationRequest{
		UserID:      userID,
		Type:        model.NotificationTypeInterest,
		SenderID:    &senderID,
		ReferenceID: &petID,
		Data:        model.InterestData(petID),
	})
}

// List returns the user's notifications newest first, running a dedup
// pass beforehand so stale duplicates never reach the client. Cleanup
// failures are logged and the list served anyway.
func (s *service) List(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	if _, err := s.CleanupDuplicates(ctx, userID); err != nil {
		s.logger.Error(err, "pre-list cleanup failed")
	}

	notifications, err := s.repo.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return notifications, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	notification, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, errors.NewNotFound("notification", err)
	}

	s.publisher.NotifyUpdate(ctx, notification)
	return notification, nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	updated, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	if updated > 0 {
		s.publisher.NotifyRefresh(ctx, userID)
	}
	return updated, nil
}

func (s *service) referenceExists(ctx context.Context, typ model.NotificationType, id uuid.UUID) (bool, error) {
	var prefix string
	switch typ {
	case model.NotificationTypeMessage:
		prefix = "conversation:"
	default:
		prefix = "pet:"
	}

	key := prefix + id.String()
	if cached, found := s.refCache.Get(key); found {
		return cached.(bool), nil
	}

	var exists bool
	var err error
	if typ == model.NotificationTypeMessage {
		exists, err = s.conversations.Exists(ctx, id)
	} else {
		exists, err = s.pets.Exists(ctx, id)
	}
	if err != nil {
		return false, err
	}

	// Only positive results are cached: a missing row may appear later.
	if exists {
		s.refCache.Set(key, true, cache.DefaultExpiration)
	}
	return exists, nil
}

func defaultContent(typ model.NotificationType) string {
	switch typ {
	case model.NotificationTypeMatch:
		return contentMatch
	case model.NotificationTypeMessage:
		return contentMessage
	default:
		return contentInterest
	}
}
