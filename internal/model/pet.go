package model

import (
	"time"

	"github.com/google/uuid"
)

type PetGender string

const (
	PetGenderMale   PetGender = "male"
	PetGenderFemale PetGender = "female"
)

type Pet struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Species   string    `db:"species" json:"species"`
	Gender    PetGender `db:"gender" json:"gender,omitempty"`
	Breed     *string   `db:"breed" json:"breed,omitempty"`
	ImageURL  *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CandidateFilters narrows the swipe candidate queue.
type CandidateFilters struct {
	Species string
	Gender  PetGender
	Limit   int
}
