package service

import (
	"context"
	"fmt"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/repository"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/utils"

	"github.com/robfig/cron/v3"
)

// sweepBatchSize caps how many stale documents one sweep re-queues.
const sweepBatchSize = 100

// Sweeper re-queues documents stuck in pending, typically after a crash
// between intake and processing.
type Sweeper struct {
	cfg      *config.Config
	logger   *logger.Logger
	docRepo  repository.RawDocumentRepository
	ingest   IngestService
	cron     *cron.Cron
}

// NewSweeper creates a new Sweeper.
func NewSweeper(cfg *config.Config, log *logger.Logger, docRepo repository.RawDocumentRepository, ingest IngestService) *Sweeper {
	return &Sweeper{
		cfg:     cfg,
		logger:  log,
		docRepo: docRepo,
		ingest:  ingest,
		cron:    cron.New(),
	}
}

// Start schedules the sweep and begins running it.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.Engine.PendingSweepSchedule, func() {
		if err := s.Sweep(ctx); err != nil {
			s.logger.Error("Pending document sweep failed", logger.ErrorField(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule pending sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Pending document sweeper started", logger.StringField("schedule", s.cfg.Engine.PendingSweepSchedule))
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep reprocesses pending documents older than the configured age.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := utils.TimeNowUTC().Add(-s.cfg.Engine.PendingSweepAge)
	docs, err := s.docRepo.FindStalePending(ctx, cutoff, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("failed to find stale pending documents: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	s.logger.Info("Sweeping stale pending documents", logger.IntField("count", len(docs)))
	for _, doc := range docs {
		if err := s.ingest.ProcessDocument(ctx, doc.SourceID); err != nil {
			s.logger.Error("Failed to reprocess stale document", logger.ErrorField(err), logger.StringField("source_id", doc.SourceID))
		}
	}
	return nil
}
