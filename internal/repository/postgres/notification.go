package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/petmatch-api/internal/model"
	"github.com/jwalitptl/petmatch-api/internal/repository"
)

type notificationRepository struct {
	BaseRepository
}

func NewNotificationRepository(base BaseRepository) repository.NotificationRepository {
	return &notificationRepository{base}
}

func (r *notificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	args := []interface{}{userID}

	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *notificationRepository) ListRecent(ctx context.Context, limit int) ([]*model.Notification, error) {
	query := `
		SELECT * FROM notifications
		ORDER BY created_at DESC
		LIMIT $1
	`

	var notifications []*model.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list recent notifications: %w", err)
	}
	return notifications, nil
}

// Replace deletes any notifications carrying the same supersession key
// before inserting the new row, in a single transaction. Nil sender or
// reference matches IS NULL, mirroring how the key is stored.
func (r *notificationRepository) Replace(ctx context.Context, notification *model.Notification) (int64, error) {
	deleteQuery := `
		DELETE FROM notifications
		WHERE user_id = $1 AND type = $2
	`
	args := []interface{}{notification.UserID, notification.Type}

	if notification.SenderID != nil {
		deleteQuery += fmt.Sprintf(" AND sender_id = $%d", len(args)+1)
		args = append(args, *notification.SenderID)
	} else {
		deleteQuery += " AND sender_id IS NULL"
	}

	if notification.ReferenceID != nil {
		deleteQuery += fmt.Sprintf(" AND reference_id = $%d", len(args)+1)
		args = append(args, *notification.ReferenceID)
	} else {
		deleteQuery += " AND reference_id IS NULL"
	}

	insertQuery := `
		INSERT INTO notifications (
			id, user_id, type, sender_id, content,
			reference_id, data, is_read, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	notification.ID = uuid.New()
	notification.CreatedAt = time.Now()

	var superseded int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, deleteQuery, args...)
		if err != nil {
			return err
		}
		if superseded, err = result.RowsAffected(); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, insertQuery,
			notification.ID,
			notification.UserID,
			notification.Type,
			notification.SenderID,
			notification.Content,
			notification.ReferenceID,
			notification.Data,
			notification.IsRead,
			notification.CreatedAt,
		)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to replace notification: %w", err)
	}
	return superseded, nil
}

func (r *notificationRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM notifications WHERE id = ANY($1)`

	var deleted int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, query, pq.Array(ids))
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete notifications: %w", err)
	}
	return deleted, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (*model.Notification, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1
		RETURNING *
	`

	var notification model.Notification
	if err := r.db.GetContext(ctx, &notification, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("notification not found")
		}
		return nil, fmt.Errorf("failed to mark notification read: %w", err)
	}
	return &notification, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return result.RowsAffected()
}

func (r *notificationRepository) ExistsNewerThan(ctx context.Context, userID uuid.UUID, since time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE user_id = $1 AND created_at > $2
		)
	`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, since); err != nil {
		return false, fmt.Errorf("failed to check for new notifications: %w", err)
	}
	return exists, nil
}

func (r *notificationRepository) ListActiveUserIDs(ctx context.Context, since time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT DISTINCT user_id FROM notifications
		WHERE created_at > $1
	`

	var ids []uuid.UUID
	if err := r.db.SelectContext(ctx, &ids, query, since); err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return ids, nil
}
