package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/observability/metrics"
)

// StatsWorker periodically refreshes the storage gauges (profiles, users,
// tags) so dashboards track corpus growth without a query per scrape.
type StatsWorker struct {
	profileRepo domain.ProfileRepository
	userRepo    domain.UserRepository
	tagRepo     domain.TagRepository
	logger      *slog.Logger
	interval    time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	profileRepo domain.ProfileRepository,
	userRepo domain.UserRepository,
	tagRepo domain.TagRepository,
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &StatsWorker{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		tagRepo:     tagRepo,
		logger:      logger,
		interval:    interval,
	}
}

// Start runs the refresh loop until the context is cancelled. One refresh
// happens immediately so gauges are populated right after startup.
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))
	w.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	if count, err := w.profileRepo.Count(ctx); err != nil {
		w.logger.Error("failed to count profiles", slog.String("error", err.Error()))
	} else {
		metrics.SetStoredProfiles(count)
	}

	if count, err := w.userRepo.Count(ctx); err != nil {
		w.logger.Error("failed to count users", slog.String("error", err.Error()))
	} else {
		metrics.SetStoredUsers(count)
	}

	if count, err := w.tagRepo.Count(ctx); err != nil {
		w.logger.Error("failed to count tags", slog.String("error", err.Error()))
	} else {
		metrics.SetStoredTags(count)
	}
}
