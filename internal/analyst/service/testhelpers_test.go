package service

import (
	"context"
	"testing"
	"time"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/analyst/repository"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/keylock"
	"dealflow-analyst/pkg/logger"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB prepares an in-memory SQLite database for testing. The pool is
// capped at one connection because every :memory: connection is a separate
// database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entity.Company{}, &entity.RawDocument{}, &entity.AnalystNote{})
	require.NoError(t, err, "failed to migrate tables")

	return db
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Engine = config.Engine{
		ConfidenceMargin:       0,
		MaterialFields:         entity.DefaultMaterialFields,
		ExtractionMaxAttempts:  2,
		ExtractionRetryBackoff: time.Millisecond,
		ExtractionTimeout:      5 * time.Second,
		GenerationTimeout:      5 * time.Second,
		NoteRecentDocuments:    5,
		CompanyCacheTTL:        time.Minute,
		PendingSweepSchedule:   "*/5 * * * *",
		PendingSweepAge:        10 * time.Minute,
	}
	return cfg
}

// stubAIRepository is a scriptable AIRepository for tests.
type stubAIRepository struct {
	extractFn  func(ctx context.Context, doc *entity.RawDocument) (*dto.ExtractionResult, error)
	generateFn func(ctx context.Context, company *entity.Company, recentDocs []entity.RawDocument) (*dto.NoteGenerationResult, error)
}

func (s *stubAIRepository) ExtractFields(ctx context.Context, doc *entity.RawDocument) (*dto.ExtractionResult, error) {
	if s.extractFn == nil {
		return &dto.ExtractionResult{SourceID: doc.SourceID}, nil
	}
	return s.extractFn(ctx, doc)
}

func (s *stubAIRepository) GenerateNote(ctx context.Context, company *entity.Company, recentDocs []entity.RawDocument) (*dto.NoteGenerationResult, error) {
	if s.generateFn == nil {
		return &dto.NoteGenerationResult{NoteContent: "## Summary\nstub", DealScore: 5}, nil
	}
	return s.generateFn(ctx, company, recentDocs)
}

// testEnv wires the full pipeline against an in-memory database with a nil
// queue, so submission processes documents synchronously.
type testEnv struct {
	cfg         *config.Config
	docRepo     repository.RawDocumentRepository
	companyRepo repository.CompanyRepository
	noteRepo    repository.AnalystNoteRepository
	noteSvc     NoteService
	ingestSvc   IngestService
}

func newTestEnv(t *testing.T, ai repository.AIRepository) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	cfg := newTestConfig()
	log := logger.NewNop()
	locks := keylock.New()

	docRepo := repository.NewRawDocumentRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	noteRepo := repository.NewAnalystNoteRepository(db)

	reconciler := NewReconciler(cfg.Engine.ConfidenceMargin, log)
	noteSvc := NewNoteService(cfg, log, companyRepo, docRepo, noteRepo, ai, locks, nil, nil)
	ingestSvc := NewIngestService(cfg, log, docRepo, companyRepo, ai, reconciler, noteSvc, locks, nil)

	return &testEnv{
		cfg:         cfg,
		docRepo:     docRepo,
		companyRepo: companyRepo,
		noteRepo:    noteRepo,
		noteSvc:     noteSvc,
		ingestSvc:   ingestSvc,
	}
}

func candidate(field string, value any, confidence float64, extractedAt time.Time) dto.FieldCandidate {
	return dto.FieldCandidate{
		Field:       field,
		Value:       value,
		Confidence:  confidence,
		ExtractedAt: extractedAt,
	}
}
