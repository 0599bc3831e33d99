package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/repository"
)

type petRepository struct {
	BaseRepository
}

func NewPetRepository(base BaseRepository) repository.PetRepository {
	return &petRepository{base}
}

func (r *petRepository) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	query := `SELECT * FROM pets WHERE id = $1`

	var pet model.Pet
	if err := r.db.GetContext(ctx, &pet, query, id); err != nil {
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return &pet, nil
}

func (r *petRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM pets WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check pet: %w", err)
	}
	return exists, nil
}

func (r *petRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*model.Pet, error) {
	query := `
		SELECT * FROM pets
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	var pets []*model.Pet
	if err := r.db.SelectContext(ctx, &pets, query, ownerID); err != nil {
		return nil, fmt.Errorf("failed to list pets: %w", err)
	}
	return pets, nil
}

func (r *petRepository) ListCandidates(ctx context.Context, excludeIDs []uuid.UUID, filters *model.CandidateFilters) ([]*model.Pet, error) {
	query := `SELECT * FROM pets WHERE TRUE`
	args := []interface{}{}

	if len(excludeIDs) > 0 {
		query += fmt.Sprintf(" AND id != ALL($%d)", len(args)+1)
		args = append(args, pq.Array(excludeIDs))
	}

	if filters.Species != "" {
		query += fmt.Sprintf(" AND species = $%d", len(args)+1)
		args = append(args, filters.Species)
	}

	if filters.Gender != "" {
		query += fmt.Sprintf(" AND gender = $%d", len(args)+1)
		args = append(args, filters.Gender)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", len(args)+1)
		args = append(args, filters.Limit)
	}

	var pets []*model.Pet
	if err := r.db.SelectContext(ctx, &pets, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return pets, nil
}
