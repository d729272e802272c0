package repository

import (
	"context"
	"time"

	"dealflow-analyst/internal/entity"

	"gorm.io/gorm"
)

// RawDocumentRepository is the append-only document log. Documents are never
// updated in place; only the processing status bookkeeping moves.
type RawDocumentRepository interface {
	Create(ctx context.Context, doc *entity.RawDocument) error
	FindBySourceID(ctx context.Context, sourceID string) (*entity.RawDocument, error)
	FindByCompany(ctx context.Context, companyID string) ([]entity.RawDocument, error)
	FindRecentByCompany(ctx context.Context, companyID string, limit int) ([]entity.RawDocument, error)
	FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]entity.RawDocument, error)
	UpdateStatus(ctx context.Context, sourceID string, status entity.DocumentStatus, processedAt *time.Time) error
}

// NewRawDocumentRepository creates a new instance of RawDocumentRepository.
func NewRawDocumentRepository(db *gorm.DB) RawDocumentRepository {
	return &rawDocumentRepository{db: db}
}

type rawDocumentRepository struct {
	db *gorm.DB
}

// Create appends a document. A reused source_id yields ErrDuplicateSource and
// no mutation.
func (r *rawDocumentRepository) Create(ctx context.Context, doc *entity.RawDocument) error {
	if err := r.db.WithContext(ctx).Create(doc).Error; err != nil {
		if isUniqueViolation(err) {
			return entity.ErrDuplicateSource
		}
		return err
	}
	return nil
}

func (r *rawDocumentRepository) FindBySourceID(ctx context.Context, sourceID string) (*entity.RawDocument, error) {
	var doc entity.RawDocument
	result := r.db.WithContext(ctx).Where("source_id = ?", sourceID).First(&doc)
	if result.Error != nil {
		return nil, result.Error
	}
	return &doc, nil
}

// FindByCompany returns all documents for a company ordered by received_at
// ascending; this ordering defines extraction precedence.
func (r *rawDocumentRepository) FindByCompany(ctx context.Context, companyID string) ([]entity.RawDocument, error) {
	var docs []entity.RawDocument
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("received_at asc").
		Find(&docs).Error
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// FindRecentByCompany returns the newest documents first, capped at limit.
func (r *rawDocumentRepository) FindRecentByCompany(ctx context.Context, companyID string, limit int) ([]entity.RawDocument, error) {
	var docs []entity.RawDocument
	query := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("received_at desc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// FindStalePending returns pending documents received before olderThan, for
// the crash-recovery sweeper.
func (r *rawDocumentRepository) FindStalePending(ctx context.Context, olderThan time.Time, limit int) ([]entity.RawDocument, error) {
	var docs []entity.RawDocument
	query := r.db.WithContext(ctx).
		Where("status = ? AND received_at < ?", entity.DocumentStatusPending, olderThan).
		Order("received_at asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *rawDocumentRepository) UpdateStatus(ctx context.Context, sourceID string, status entity.DocumentStatus, processedAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&entity.RawDocument{}).
		Where("source_id = ?", sourceID).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": processedAt,
		}).Error
}
