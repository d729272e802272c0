package repository

import (
	"context"

	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/entity"
)

type AIRepository interface {
	ExtractFields(ctx context.Context, doc *entity.RawDocument) (*dto.ExtractionResult, error)
	GenerateNote(ctx context.Context, company *entity.Company, recentDocs []entity.RawDocument) (*dto.NoteGenerationResult, error)
}
