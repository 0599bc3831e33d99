package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jwalitptl/petmatch-api/internal/repository"
	"github.com/jwalitptl/petmatch-api/internal/service/notification"
	"github.com/jwalitptl/petmatch-api/pkg/logger"
	"github.com/jwalitptl/petmatch-api/pkg/metrics"
)

// DedupSweeper periodically runs the duplicate cleanup for every user
// who received notifications recently. The per-request cleanup already
// keeps active users tidy; this catches users who stopped reading.
type DedupSweeper struct {
	notifications notification.Service
	repo          repository.NotificationRepository
	metrics       *metrics.Metrics
	logger        *logger.Logger
	interval      time.Duration
	lookback      time.Duration
}

func NewDedupSweeper(notifications notification.Service, repo repository.NotificationRepository, m *metrics.Metrics, logger *logger.Logger, interval, lookback time.Duration) *DedupSweeper {
	return &DedupSweeper{
		notifications: notifications,
		repo:          repo,
		metrics:       m,
		logger:        logger,
		interval:      interval,
		lookback:      lookback,
	}
}

func (w *DedupSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.sweep(ctx); err != nil {
				w.logger.Error(err, "dedup sweep failed")
			}
		}
	}
}

func (w *DedupSweeper) sweep(ctx context.Context) error {
	since := time.Now().Add(-w.lookback)

	start := time.Now()
	userIDs, err := w.repo.ListActiveUserIDs(ctx, since)
	w.metrics.DatabaseLatency.WithLabelValues("list_active_users").Observe(time.Since(start).Seconds())
	if err != nil {
		w.metrics.DatabaseOperations.WithLabelValues("list_active_users", "error").Inc()
		return fmt.Errorf("failed to list active users: %w", err)
	}
	w.metrics.DatabaseOperations.WithLabelValues("list_active_users", "success").Inc()

	var removed int
	for _, userID := range userIDs {
		result, err := w.notifications.CleanupDuplicates(ctx, userID)
		if err != nil {
			w.logger.Error(err, "cleanup failed for user", "user_id", userID.String())
			continue
		}
		removed += result.Count
	}

	if removed > 0 {
		w.logger.Info("dedup sweep complete", "users", len(userIDs), "removed", removed)
	}
	return nil
}
