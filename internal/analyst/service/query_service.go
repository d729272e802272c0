package service

import (
	"context"
	"fmt"

	"dealflow-analyst/internal/analyst/repository"
	"dealflow-analyst/internal/entity"
)

// QueryService is the read side: company snapshots, document history and the
// note ledger.
type QueryService interface {
	GetCompany(ctx context.Context, companyID string) (*entity.Company, error)
	ListDocuments(ctx context.Context, companyID string) ([]entity.RawDocument, error)
	ListNotes(ctx context.Context, companyID string) ([]entity.AnalystNote, error)
}

// NewQueryService creates a new QueryService.
func NewQueryService(
	companyRepo repository.CompanyRepository,
	docRepo repository.RawDocumentRepository,
	noteRepo repository.AnalystNoteRepository,
) QueryService {
	return &queryService{
		companyRepo: companyRepo,
		docRepo:     docRepo,
		noteRepo:    noteRepo,
	}
}

type queryService struct {
	companyRepo repository.CompanyRepository
	docRepo     repository.RawDocumentRepository
	noteRepo    repository.AnalystNoteRepository
}

func (s *queryService) GetCompany(ctx context.Context, companyID string) (*entity.Company, error) {
	return s.companyRepo.FindByID(ctx, companyID)
}

func (s *queryService) ListDocuments(ctx context.Context, companyID string) ([]entity.RawDocument, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	docs, err := s.docRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *queryService) ListNotes(ctx context.Context, companyID string) ([]entity.AnalystNote, error) {
	if _, err := s.companyRepo.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	notes, err := s.noteRepo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
