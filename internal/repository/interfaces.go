package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/model"
)

// All repository interfaces in one file
type (
	// NotificationRepository handles notification rows. Notifications are
	// only ever mutated to flip is_read; everything else is insert/delete.
	NotificationRepository interface {
		ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error)
		ListRecent(ctx context.Context, limit int) ([]*model.Notification, error)
		Replace(ctx context.Context, notification *model.Notification) (int64, error)
		DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error)
		MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error)
		MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
		ExistsNewerThan(ctx context.Context, userID uuid.UUID, since time.Time) (bool, error)
		ListActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error)
	}

	InterestRepository interface {
		Create(ctx context.Context, interest *model.Interest) error
		Exists(ctx context.Context, userID, petID uuid.UUID) (bool, error)
		ListPetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	}

	PetRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Pet, error)
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
		ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error)
		ListCandidates(ctx context.Context, excludeIDs []uuid.UUID, filters *model.CandidateFilters) ([]*model.Pet, error)
	}

	ConversationRepository interface {
		Exists(ctx context.Context, id uuid.UUID) (bool, error)
	}

	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}
)
