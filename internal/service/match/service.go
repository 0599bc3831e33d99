package match

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/email"
	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/repository"
	"github.com/jwalitptl/petmatch-api/internal/service/notification"
	"github.com/jwalitptl/petmatch-api/pkg/errors"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

// LikeResult is the outcome of one like swipe.
type LikeResult struct {
	Compatible bool       `json:"compatible"`
	Reason     string     `json:"reason,omitempty"`
	Matched    bool       `json:"matched"`
	MatchedPet *model.Pet `json:"matched_pet,omitempty"`
}

type Service interface {
	Candidates(ctx context.Context, userID uuid.UUID, selected *model.Pet) ([]*model.Pet, error)
	Like(ctx context.Context, userID uuid.UUID, currentPet, targetPet *model.Pet) (*LikeResult, error)
	Dislike(targetPetID uuid.UUID)
	ShowInterest(ctx context.Context, userID, targetPetID uuid.UUID) error
	Pet(ctx context.Context, id uuid.UUID) (*model.Pet, error)
	OwnedPets(ctx context.Context, userID uuid.UUID) ([]*model.Pet, error)
}

type service struct {
	pets          repository.PetRepository
	interests     repository.InterestRepository
	users         repository.UserRepository
	notifications notification.Service
	emailSvc      email.Service
	metrics       *metrics.Metrics
	logger        *logger.Logger
	pageSize      int
}

func NewService(pets repository.PetRepository, interests repository.InterestRepository, users repository.UserRepository, notifications notification.Service, emailSvc email.Service, m *metrics.Metrics, logger *logger.Logger, pageSize int) Service {
	return &service{
		pets:          pets,
		interests:     interests,
		users:         users,
		notifications: notifications,
		emailSvc:      emailSvc,
		metrics:       m,
		logger:        logger,
		pageSize:      pageSize,
	}
}

func (s *service) Pet(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	pet, err := s.pets.Get(ctx, id)
	if err != nil {
		return nil, errors.NewNotFound("pet", err)
	}
	return pet, nil
}

func (s *service) OwnedPets(ctx context.Context, userID uuid.UUID) ([]*model.Pet, error) {
	pets, err := s.pets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return pets, nil
}

// Candidates loads the next batch of pets for the user to swipe on:
// same species as the selected pet, opposite gender, excluding the
// user's own pets and anything already swiped on.
func (s *service) Candidates(ctx context.Context, userID uuid.UUID, selected *model.Pet) ([]*model.Pet, error) {
	own, err := s.pets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to load own pets: %w", err))
	}

	interacted, err := s.interests.ListPetIDs(ctx, userID)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to load swipe history: %w", err))
	}

	exclude := make([]uuid.UUID, 0, len(own)+len(interacted))
	for _, pet := range own {
		exclude = append(exclude, pet.ID)
	}
	exclude = append(exclude, interacted...)

	candidates, err := s.pets.ListCandidates(ctx, exclude, &model.CandidateFilters{
		Species: selected.Species,
		Gender:  opposite(selected.Gender),
		Limit:   s.pageSize,
	})
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to load candidates: %w", err))
	}
	return candidates, nil
}

// Like records a like swipe. Incompatible pairs produce a reason and no
// persisted interest. A mutual interest triggers match notifications
// for both owners; notification failures never fail the swipe.
func (s *service) Like(ctx context.Context, userID uuid.UUID, currentPet, targetPet *model.Pet) (*LikeResult, error) {
	comp := CheckCompatibility(currentPet, targetPet)
	if !comp.Compatible {
		s.metrics.IncompatiblePairs.WithLabelValues(comp.Reason).Inc()
		return &LikeResult{Reason: comp.Reason}, nil
	}

	interest := &model.Interest{
		UserID:    userID,
		PetID:     targetPet.ID,
		FromPetID: currentPet.ID,
	}
	if err := s.interests.Create(ctx, interest); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to record interest: %w", err))
	}
	s.metrics.SwipesRecorded.WithLabelValues("like").Inc()

	// The other owner has a match with us if they already liked the pet
	// we are swiping with, through any of their pets.
	mutual, err := s.interests.Exists(ctx, targetPet.OwnerID, currentPet.ID)
	if err != nil {
		s.logger.Error(err, "mutual interest check failed")
		return &LikeResult{Compatible: true}, nil
	}

	result := &LikeResult{Compatible: true, Matched: mutual}
	if mutual {
		result.MatchedPet = targetPet
		s.metrics.MatchesDetected.Inc()
		s.celebrate(ctx, userID, currentPet, targetPet)
	}
	return result, nil
}

// Dislike leaves no trace in the store; disliked pets come back in
// future sessions.
func (s *service) Dislike(targetPetID uuid.UUID) {
	s.metrics.SwipesRecorded.WithLabelValues("dislike").Inc()
	s.logger.Debug("dislike recorded", "pet_id", targetPetID.String())
}

// ShowInterest alerts a pet's owner that userID is interested, the
// discover page's lightweight alternative to a swipe.
func (s *service) ShowInterest(ctx context.Context, userID, targetPetID uuid.UUID) error {
	pet, err := s.pets.Get(ctx, targetPetID)
	if err != nil {
		return errors.NewNotFound("pet", err)
	}
	if pet.OwnerID == userID {
		return errors.NewBadRequest("cannot show interest in your own pet", nil)
	}

	if _, err := s.notifications.CreateInterest(ctx, pet.OwnerID, userID, pet.ID); err != nil {
		return err
	}
	return nil
}

// celebrate fans out match notifications to both owners. Each owner is
// told about the other side's pet, the one their own pet matched with.
func (s *service) celebrate(ctx context.Context, userID uuid.UUID, currentPet, targetPet *model.Pet) {
	if _, err := s.notifications.CreateMatch(ctx, userID, targetPet.OwnerID, targetPet.ID); err != nil {
		s.logger.Error(err, "failed to notify matching user")
	}
	if _, err := s.notifications.CreateMatch(ctx, targetPet.OwnerID, userID, currentPet.ID); err != nil {
		s.logger.Error(err, "failed to notify matched owner")
	}

	owner, err := s.users.Get(ctx, targetPet.OwnerID)
	if err != nil {
		s.logger.Error(err, "failed to load matched owner for email")
		return
	}
	if err := s.emailSvc.SendMatchAlert(ctx, owner.Email, targetPet.Name, currentPet.Name); err != nil {
		s.logger.Error(err, "failed to send match email")
	}
}

func opposite(g model.PetGender) model.PetGender {
	switch g {
	case model.PetGenderMale:
		return model.PetGenderFemale
	case model.PetGenderFemale:
		return model.PetGenderMale
	}
	return ""
}
