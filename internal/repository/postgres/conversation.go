package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/repository"
)

type conversationRepository struct {
	BaseRepository
}

func NewConversationRepository(base BaseRepository) repository.ConversationRepository {
	return &conversationRepository{base}
}

func (r *conversationRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM direct_conversations WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("failed to check conversation: %w", err)
	}
	return exists, nil
}
