package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/pkg/errors"
)

// maxScanRows caps how far back the admin integrity scan looks.
const maxScanRows = 500

// CleanupDuplicates removes older notifications that share a dedup key
// with a newer one. The newest row per key survives. Safe to run
// repeatedly; a second pass finds nothing.
func (s *service) CleanupDuplicates(ctx context.Context, userID uuid.UUID) (*model.CleanupResult, error) {
	notifications, err := s.repo.ListForUser(ctx, userID, 0)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	seen := make(map[model.DedupKey]bool, len(notifications))
	var duplicates []uuid.UUID
	for _, n := range notifications {
		key := n.DedupKey()
		if seen[key] {
			duplicates = append(duplicates, n.ID)
			continue
		}
		seen[key] = true
	}

	if len(duplicates) == 0 {
		return &model.CleanupResult{}, nil
	}

	deleted, err := s.repo.DeleteBatch(ctx, duplicates)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	s.metrics.DuplicatesRemoved.Add(float64(deleted))
	s.logger.Info("removed duplicate notifications", "user_id", userID.String(), "count", deleted)

	return &model.CleanupResult{Count: int(deleted)}, nil
}

// FindInvalid scans recent notifications for rows that would confuse
// clients and reports what is wrong with each, without deleting
// anything.
func (s *service) FindInvalid(ctx context.Context) ([]*model.InvalidNotification, error) {
	notifications, err := s.repo.ListRecent(ctx, maxScanRows)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var invalid []*model.InvalidNotification
	for _, n := range notifications {
		issues := inspect(n)
		if len(issues) > 0 {
			invalid = append(invalid, &model.InvalidNotification{
				Notification: n,
				Issues:       issues,
			})
		}
	}
	return invalid, nil
}

// DeleteInvalid removes the given notifications. Errors are folded into
// the result so the admin UI always gets a well-formed answer.
func (s *service) DeleteInvalid(ctx context.Context, ids []uuid.UUID) *model.DeleteResult {
	if len(ids) == 0 {
		return &model.DeleteResult{Success: true}
	}

	deleted, err := s.repo.DeleteBatch(ctx, ids)
	if err != nil {
		s.logger.Error(err, "failed to delete invalid notifications")
		return &model.DeleteResult{Error: err.Error()}
	}
	return &model.DeleteResult{Success: true, Count: int(deleted)}
}

func inspect(n *model.Notification) []model.FieldIssue {
	var issues []model.FieldIssue

	if n.UserID == uuid.Nil {
		issues = append(issues, model.FieldIssue{Field: "user_id", Issue: "missing"})
	}
	if !n.Type.Valid() {
		issues = append(issues, model.FieldIssue{Field: "type", Issue: "unknown value", Value: string(n.Type)})
	}
	if n.Content == nil || *n.Content == "" {
		issues = append(issues, model.FieldIssue{Field: "content", Issue: "missing"})
	}

	switch n.Type {
	case model.NotificationTypeMessage:
		if n.Data == nil || n.Data.ConversationID == nil {
			issues = append(issues, model.FieldIssue{Field: "data", Issue: "missing conversation reference"})
		}
	case model.NotificationTypeMatch, model.NotificationTypeInterest:
		if n.Data == nil || n.Data.PetID == nil {
			issues = append(issues, model.FieldIssue{Field: "data", Issue: "missing pet reference"})
		}
	}

	return issues
}
