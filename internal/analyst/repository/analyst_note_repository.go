package repository

import (
	"context"

	"dealflow-analyst/internal/entity"

	"gorm.io/gorm"
)

// AnalystNoteRepository is the append-only note ledger. Notes are immutable
// once written; there is no update or delete path.
type AnalystNoteRepository interface {
	Create(ctx context.Context, note *entity.AnalystNote) error
	FindByCompany(ctx context.Context, companyID string) ([]entity.AnalystNote, error)
	MaxVersion(ctx context.Context, companyID string) (int, error)
}

// NewAnalystNoteRepository creates a new instance of AnalystNoteRepository.
func NewAnalystNoteRepository(db *gorm.DB) AnalystNoteRepository {
	return &analystNoteRepository{db: db}
}

type analystNoteRepository struct {
	db *gorm.DB
}

// Create appends a note. A colliding (company_id, note_version) pair yields
// ErrVersionConflict; the second writer must fail rather than overwrite.
func (r *analystNoteRepository) Create(ctx context.Context, note *entity.AnalystNote) error {
	if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
		if isUniqueViolation(err) {
			return entity.ErrVersionConflict
		}
		return err
	}
	return nil
}

// FindByCompany returns the company's notes ordered by note_version ascending.
func (r *analystNoteRepository) FindByCompany(ctx context.Context, companyID string) ([]entity.AnalystNote, error) {
	var notes []entity.AnalystNote
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("note_version asc").
		Find(&notes).Error
	if err != nil {
		return nil, err
	}
	return notes, nil
}

// MaxVersion returns the highest note_version for the company, 0 when the
// company has no notes yet.
func (r *analystNoteRepository) MaxVersion(ctx context.Context, companyID string) (int, error) {
	var version int
	err := r.db.WithContext(ctx).
		Model(&entity.AnalystNote{}).
		Where("company_id = ?", companyID).
		Select("COALESCE(MAX(note_version), 0)").
		Scan(&version).Error
	if err != nil {
		return 0, err
	}
	return version, nil
}
