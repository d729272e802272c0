package service

import (
	"context"
	"encoding/json"
	"fmt"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/repository"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/common"
	"dealflow-analyst/pkg/keylock"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/telegram"
	"dealflow-analyst/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// NoteService generates versioned analyst notes from company snapshots.
type NoteService interface {
	// Generate produces the next note version for the company, serialized
	// against concurrent reconciliation of the same company.
	Generate(ctx context.Context, companyID string) (*entity.AnalystNote, error)
	// GenerateLocked is Generate for callers already holding the company's
	// key lock.
	GenerateLocked(ctx context.Context, companyID string) (*entity.AnalystNote, error)
	// EnqueueRetry queues a note regeneration attempt after a failure. The
	// reconciled company state is already committed at that point; only the
	// note is retried.
	EnqueueRetry(ctx context.Context, companyID string) error
}

// NewNoteService creates a new NoteService.
func NewNoteService(
	cfg *config.Config,
	log *logger.Logger,
	companyRepo repository.CompanyRepository,
	docRepo repository.RawDocumentRepository,
	noteRepo repository.AnalystNoteRepository,
	aiRepo repository.AIRepository,
	locks *keylock.KeyLock,
	redisClient *redis.Client,
	notifier telegram.Notifier,
) NoteService {
	return &noteService{
		cfg:         cfg,
		logger:      log,
		companyRepo: companyRepo,
		docRepo:     docRepo,
		noteRepo:    noteRepo,
		aiRepo:      aiRepo,
		locks:       locks,
		redisClient: redisClient,
		notifier:    notifier,
	}
}

type noteService struct {
	cfg         *config.Config
	logger      *logger.Logger
	companyRepo repository.CompanyRepository
	docRepo     repository.RawDocumentRepository
	noteRepo    repository.AnalystNoteRepository
	aiRepo      repository.AIRepository
	locks       *keylock.KeyLock
	redisClient *redis.Client
	notifier    telegram.Notifier
}

func (s *noteService) Generate(ctx context.Context, companyID string) (*entity.AnalystNote, error) {
	release := s.locks.Lock(companyID)
	defer release()
	return s.GenerateLocked(ctx, companyID)
}

func (s *noteService) GenerateLocked(ctx context.Context, companyID string) (*entity.AnalystNote, error) {
	company, err := s.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	recentDocs, err := s.docRepo.FindRecentByCompany(ctx, companyID, s.cfg.Engine.NoteRecentDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent documents: %w", err)
	}

	genCtx, cancel := context.WithTimeout(ctx, s.cfg.Engine.GenerationTimeout)
	defer cancel()

	result, err := s.aiRepo.GenerateNote(genCtx, company, recentDocs)
	if err != nil {
		return nil, fmt.Errorf("note generation failed: %w", err)
	}

	maxVersion, err := s.noteRepo.MaxVersion(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve note version: %w", err)
	}

	now := utils.TimeNowUTC()
	note := &entity.AnalystNote{
		NoteID:      uuid.NewString(),
		CompanyID:   companyID,
		CompanyName: company.CompanyName,
		GeneratedAt: now,
		NoteVersion: maxVersion + 1,
		NoteContent: result.NoteContent,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		// ErrVersionConflict means a concurrent writer slipped in despite the
		// key lock; the second writer must fail, never overwrite.
		return nil, err
	}

	score := clampDealScore(result.DealScore)
	company.DealScore = &score
	company.LastUpdatedAt = now
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to save deal score: %w", err)
	}

	s.logger.Info("Generated analyst note",
		logger.StringField("company_id", companyID),
		logger.IntField("note_version", note.NoteVersion),
		logger.IntField("deal_score", score),
	)

	if s.notifier != nil {
		message := telegram.FormatNoteNotification(company.CompanyName, companyID, note.NoteVersion, score, now)
		utils.GoSafe(func() {
			if err := s.notifier.SendMessage(message); err != nil {
				s.logger.Error("Failed to send note notification", logger.ErrorField(err), logger.StringField("company_id", companyID))
			}
		})
	}

	return note, nil
}

func (s *noteService) EnqueueRetry(ctx context.Context, companyID string) error {
	if s.redisClient == nil {
		s.logger.Warn("Note retry dropped: no queue configured", logger.StringField("company_id", companyID))
		return nil
	}

	payload, err := json.Marshal(map[string]string{"company_id": companyID})
	if err != nil {
		return fmt.Errorf("failed to marshal retry payload: %w", err)
	}

	err = s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamNoteRetry,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to enqueue note retry: %w", err)
	}
	return nil
}

func clampDealScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}
