package repository

import (
	"context"
	"time"

	"dealflow-analyst/internal/entity"

	gocache "github.com/patrickmn/go-cache"
)

// cachingCompanyRepository is a read-through cache decorator for the company
// registry. Reads on the query path avoid hitting the database for hot
// companies; every write invalidates the cached row.
type cachingCompanyRepository struct {
	inner CompanyRepository
	cache *gocache.Cache
}

// NewCachingCompanyRepository wraps inner with a TTL cache keyed by company_id.
func NewCachingCompanyRepository(inner CompanyRepository, ttl time.Duration) CompanyRepository {
	return &cachingCompanyRepository{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *cachingCompanyRepository) FindByID(ctx context.Context, companyID string) (*entity.Company, error) {
	if cached, ok := r.cache.Get(companyID); ok {
		company := cached.(entity.Company)
		return &company, nil
	}

	company, err := r.inner.FindByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(companyID, *company)
	return company, nil
}

func (r *cachingCompanyRepository) FirstOrCreate(ctx context.Context, companyID, companyName string, now time.Time) (*entity.Company, error) {
	r.cache.Delete(companyID)
	return r.inner.FirstOrCreate(ctx, companyID, companyName, now)
}

func (r *cachingCompanyRepository) Save(ctx context.Context, company *entity.Company) error {
	if err := r.inner.Save(ctx, company); err != nil {
		return err
	}
	r.cache.Delete(company.CompanyID)
	return nil
}
