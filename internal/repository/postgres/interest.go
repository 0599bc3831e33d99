package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/repository"
)

type interestRepository struct {
	BaseRepository
}

func NewInterestRepository(base BaseRepository) repository.InterestRepository {
	return &interestRepository{base}
}

func (r *interestRepository) Create(ctx context.Context, interest *model.Interest) error {
	query := `
		INSERT INTO interests (id, user_id, pet_id, from_pet_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, pet_id) DO NOTHING
	`

	interest.ID = uuid.New()
	interest.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		interest.ID,
		interest.UserID,
		interest.PetID,
		interest.FromPetID,
		interest.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create interest: %w", err)
	}
	return nil
}

// Exists is the mutual-match probe: does userID already have an interest
// in petID, recorded through any of their pets.
func (r *interestRepository) Exists(ctx context.Context, userID, petID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM interests
			WHERE user_id = $1 AND pet_id = $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, petID); err != nil {
		return false, fmt.Errorf("failed to check interest: %w", err)
	}
	return exists, nil
}

func (r *interestRepository) ListPetIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT pet_id FROM interests WHERE user_id = $1`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list interests: %w", err)
	}
	return ids, nil
}
