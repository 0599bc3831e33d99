package model

import (
	"time"

	"github.com/google/uuid"
)

// Interest records that a user, acting through one of their pets, expressed
// interest in another pet. A symmetric pair of interests is a mutual match.
type Interest struct {
	ID        uuid.UUID `db:"id" json:"id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	PetID     uuid.UUID `db:"pet_id" json:"pet_id"`
	FromPetID uuid.UUID `db:"from_pet_id" json:"from_pet_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
