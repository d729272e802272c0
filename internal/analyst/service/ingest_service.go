package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/analyst/repository"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/common"
	"dealflow-analyst/pkg/keylock"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IngestService is the document intake and reconciliation pipeline: append
// the document, extract field candidates, merge them into the company record,
// recompute derived metrics and trigger note regeneration on material change.
type IngestService interface {
	SubmitDocument(ctx context.Context, req *dto.SubmitDocumentRequest) (*dto.SubmitDocumentResponse, error)
	ProcessDocument(ctx context.Context, sourceID string) error
}

// NewIngestService creates a new IngestService. A nil redisClient makes
// submission process documents synchronously instead of queueing them.
func NewIngestService(
	cfg *config.Config,
	log *logger.Logger,
	docRepo repository.RawDocumentRepository,
	companyRepo repository.CompanyRepository,
	aiRepo repository.AIRepository,
	reconciler *Reconciler,
	noteService NoteService,
	locks *keylock.KeyLock,
	redisClient *redis.Client,
) IngestService {
	return &ingestService{
		cfg:         cfg,
		logger:      log,
		docRepo:     docRepo,
		companyRepo: companyRepo,
		aiRepo:      aiRepo,
		reconciler:  reconciler,
		noteService: noteService,
		locks:       locks,
		redisClient: redisClient,
	}
}

type ingestService struct {
	cfg         *config.Config
	logger      *logger.Logger
	docRepo     repository.RawDocumentRepository
	companyRepo repository.CompanyRepository
	aiRepo      repository.AIRepository
	reconciler  *Reconciler
	noteService NoteService
	locks       *keylock.KeyLock
	redisClient *redis.Client
}

// SubmitDocument appends a document to the log and queues it for processing.
// A reused source_id is rejected with ErrDuplicateSource and causes no
// mutation; idempotent keying is the caller's responsibility.
func (s *ingestService) SubmitDocument(ctx context.Context, req *dto.SubmitDocumentRequest) (*dto.SubmitDocumentResponse, error) {
	if req.RawContentText == "" {
		return nil, fmt.Errorf("raw_content_text is required")
	}
	if req.SourceType == "" {
		return nil, fmt.Errorf("source_type is required")
	}
	if req.CompanyID == "" && req.CompanyName == "" {
		return nil, fmt.Errorf("company_id or company_name is required")
	}

	receivedAt := utils.TimeNowUTC()
	if req.ReceivedAt != nil {
		receivedAt = req.ReceivedAt.UTC()
	}

	sourceID := req.SourceID
	if sourceID == "" {
		sourceID = uuid.NewString()
	}

	companyID := req.CompanyID
	if companyID == "" {
		companyID = utils.CompanySlug(req.CompanyName, receivedAt)
	}

	doc := &entity.RawDocument{
		SourceID:       sourceID,
		CompanyID:      companyID,
		CompanyName:    req.CompanyName,
		SourceType:     entity.SourceType(req.SourceType),
		ReceivedAt:     receivedAt,
		FileName:       req.FileName,
		RawContentText: req.RawContentText,
		Status:         entity.DocumentStatusPending,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("Accepted document",
		logger.StringField("source_id", sourceID),
		logger.StringField("company_id", companyID),
		logger.StringField("source_type", req.SourceType),
	)

	if s.redisClient != nil {
		if err := s.enqueueDocument(ctx, sourceID); err != nil {
			// The document stays pending; the sweeper re-queues it later.
			s.logger.Error("Failed to enqueue document", logger.ErrorField(err), logger.StringField("source_id", sourceID))
		}
	} else {
		if err := s.ProcessDocument(ctx, sourceID); err != nil {
			s.logger.Error("Failed to process document", logger.ErrorField(err), logger.StringField("source_id", sourceID))
		}
	}

	return &dto.SubmitDocumentResponse{SourceID: sourceID, CompanyID: companyID}, nil
}

func (s *ingestService) enqueueDocument(ctx context.Context, sourceID string) error {
	payload, err := json.Marshal(map[string]string{"source_id": sourceID})
	if err != nil {
		return fmt.Errorf("failed to marshal document payload: %w", err)
	}
	return s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamDocumentIngest,
		Values: map[string]interface{}{"payload": string(payload)},
	}).Err()
}

// ProcessDocument runs extraction and reconciliation for one document. It is
// idempotent: an already-processed document is a no-op. The whole
// reconcile-derive-note sequence holds the company's key lock so concurrent
// documents for the same company serialize while other companies proceed.
func (s *ingestService) ProcessDocument(ctx context.Context, sourceID string) error {
	doc, err := s.docRepo.FindBySourceID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", sourceID, err)
	}
	if doc.Status == entity.DocumentStatusProcessed {
		return nil
	}

	release := s.locks.Lock(doc.CompanyID)
	defer release()

	// Re-read under the lock: a concurrent worker may have finished it while
	// we waited.
	doc, err = s.docRepo.FindBySourceID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to load document %s: %w", sourceID, err)
	}
	if doc.Status == entity.DocumentStatusProcessed {
		return nil
	}

	result, err := s.extractWithRetry(ctx, doc)
	if err != nil {
		if updateErr := s.docRepo.UpdateStatus(ctx, sourceID, entity.DocumentStatusUnprocessed, nil); updateErr != nil {
			s.logger.Error("Failed to mark document unprocessed", logger.ErrorField(updateErr), logger.StringField("source_id", sourceID))
		}
		return fmt.Errorf("extraction exhausted retries for %s: %w", sourceID, err)
	}

	now := utils.TimeNowUTC()
	company, err := s.companyRepo.FirstOrCreate(ctx, doc.CompanyID, doc.CompanyName, now)
	if err != nil {
		return fmt.Errorf("failed to load company %s: %w", doc.CompanyID, err)
	}

	if len(result.Candidates) == 0 {
		s.logger.Info("Document yielded no field candidates", logger.StringField("source_id", sourceID))
		return s.markProcessed(ctx, sourceID, now)
	}

	changed, err := s.reconciler.Merge(company, result.Candidates)
	if err != nil {
		return fmt.Errorf("failed to merge candidates for %s: %w", sourceID, err)
	}
	changed = append(changed, Derive(company)...)

	if len(changed) > 0 {
		company.LastUpdatedAt = now
	}
	if err := s.companyRepo.Save(ctx, company); err != nil {
		return fmt.Errorf("failed to save company %s: %w", doc.CompanyID, err)
	}

	if err := s.markProcessed(ctx, sourceID, now); err != nil {
		return err
	}

	s.logger.Info("Reconciled document",
		logger.StringField("source_id", sourceID),
		logger.StringField("company_id", doc.CompanyID),
		logger.IntField("changed_fields", len(changed)),
	)

	if s.isMaterial(changed) {
		if _, err := s.noteService.GenerateLocked(ctx, doc.CompanyID); err != nil {
			// Reconciliation is already committed; only the note is retried.
			s.logger.Error("Note generation failed after material change", logger.ErrorField(err), logger.StringField("company_id", doc.CompanyID))
			if retryErr := s.noteService.EnqueueRetry(ctx, doc.CompanyID); retryErr != nil {
				s.logger.Error("Failed to enqueue note retry", logger.ErrorField(retryErr), logger.StringField("company_id", doc.CompanyID))
			}
		}
	}

	return nil
}

func (s *ingestService) markProcessed(ctx context.Context, sourceID string, now time.Time) error {
	if err := s.docRepo.UpdateStatus(ctx, sourceID, entity.DocumentStatusProcessed, &now); err != nil {
		return fmt.Errorf("failed to mark document processed: %w", err)
	}
	return nil
}

func (s *ingestService) extractWithRetry(ctx context.Context, doc *entity.RawDocument) (*dto.ExtractionResult, error) {
	backoff := s.cfg.Engine.ExtractionRetryBackoff
	var lastErr error

	for attempt := 1; attempt <= s.cfg.Engine.ExtractionMaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.Engine.ExtractionTimeout)
		result, err := s.aiRepo.ExtractFields(attemptCtx, doc)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err

		s.logger.Warn("Extraction attempt failed",
			logger.StringField("source_id", doc.SourceID),
			logger.IntField("attempt", attempt),
			logger.ErrorField(err),
		)

		if attempt == s.cfg.Engine.ExtractionMaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return nil, lastErr
}

func (s *ingestService) isMaterial(changed []string) bool {
	if len(changed) == 0 {
		return false
	}
	material := make(map[string]bool, len(s.cfg.Engine.MaterialFields))
	for _, f := range s.cfg.Engine.MaterialFields {
		material[f] = true
	}
	for _, f := range changed {
		if material[f] {
			return true
		}
	}
	return false
}
