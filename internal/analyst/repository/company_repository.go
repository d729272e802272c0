package repository

import (
	"context"
	"errors"
	"time"

	"dealflow-analyst/internal/entity"

	"gorm.io/gorm"
)

// CompanyRepository is the registry of mutable company aggregates.
type CompanyRepository interface {
	FindByID(ctx context.Context, companyID string) (*entity.Company, error)
	FirstOrCreate(ctx context.Context, companyID, companyName string, now time.Time) (*entity.Company, error)
	Save(ctx context.Context, company *entity.Company) error
}

// NewCompanyRepository creates a new instance of CompanyRepository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

type companyRepository struct {
	db *gorm.DB
}

// FindByID loads a company or returns ErrCompanyNotFound.
func (r *companyRepository) FindByID(ctx context.Context, companyID string) (*entity.Company, error) {
	var company entity.Company
	result := r.db.WithContext(ctx).Where("company_id = ?", companyID).First(&company)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, entity.ErrCompanyNotFound
		}
		return nil, result.Error
	}
	return &company, nil
}

// FirstOrCreate loads the company row, lazily creating it on the first
// document for a new company_id. All derivable fields start unset.
func (r *companyRepository) FirstOrCreate(ctx context.Context, companyID, companyName string, now time.Time) (*entity.Company, error) {
	company, err := r.FindByID(ctx, companyID)
	if err == nil {
		return company, nil
	}
	if !errors.Is(err, entity.ErrCompanyNotFound) {
		return nil, err
	}

	created := &entity.Company{
		CompanyID:     companyID,
		CompanyName:   companyName,
		LastUpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(created).Error; err != nil {
		// A concurrent creator for the same company_id is benign: load theirs.
		if isUniqueViolation(err) {
			return r.FindByID(ctx, companyID)
		}
		return nil, err
	}
	return created, nil
}

// Save persists the full company row.
func (r *companyRepository) Save(ctx context.Context, company *entity.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
