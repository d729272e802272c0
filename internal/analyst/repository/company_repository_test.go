package repository

import (
	"context"
	"testing"
	"time"

	"dealflow-analyst/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyRepository_FindByID(t *testing.T) {
	t.Run("unknown company", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCompanyRepository(db)

		_, err := repo.FindByID(context.Background(), "missing")
		assert.ErrorIs(t, err, entity.ErrCompanyNotFound)
	})
}

func TestCompanyRepository_FirstOrCreate(t *testing.T) {
	t.Run("creates on first sight", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCompanyRepository(db)

		now := time.Now().UTC()
		company, err := repo.FirstOrCreate(context.Background(), "acme_01012026", "Acme Robotics", now)
		require.NoError(t, err)
		assert.Equal(t, "Acme Robotics", company.CompanyName)
		assert.Nil(t, company.DealScore, "derivable fields start unset")
	})

	t.Run("returns existing row on second sight", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCompanyRepository(db)

		now := time.Now().UTC()
		first, err := repo.FirstOrCreate(context.Background(), "acme_01012026", "Acme Robotics", now)
		require.NoError(t, err)

		mrr := 12000.0
		first.RevenueMRRUSD = &mrr
		require.NoError(t, repo.Save(context.Background(), first))

		second, err := repo.FirstOrCreate(context.Background(), "acme_01012026", "Acme (renamed)", now)
		require.NoError(t, err)
		assert.Equal(t, "Acme Robotics", second.CompanyName, "existing row wins over the new name")
		require.NotNil(t, second.RevenueMRRUSD)
		assert.Equal(t, 12000.0, *second.RevenueMRRUSD)
	})
}

func TestCompanyRepository_SaveRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCompanyRepository(db)

	now := time.Now().UTC()
	company, err := repo.FirstOrCreate(context.Background(), "acme", "Acme Robotics", now)
	require.NoError(t, err)

	company.SectorTags = []string{"robotics", "ai"}
	burn := int64(20000)
	company.BurnRateMonthlyUSD = &burn
	require.NoError(t, company.SetFieldStateMap(map[string]entity.FieldState{
		entity.FieldBurnRateMonthlyUSD: {Confidence: 0.9, ExtractedAt: now},
	}))
	require.NoError(t, repo.Save(context.Background(), company))

	found, err := repo.FindByID(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, []string{"robotics", "ai"}, []string(found.SectorTags))
	require.NotNil(t, found.BurnRateMonthlyUSD)
	assert.Equal(t, int64(20000), *found.BurnRateMonthlyUSD)

	states, err := found.FieldStateMap()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, states[entity.FieldBurnRateMonthlyUSD].Confidence, 1e-9)
}

func TestCachingCompanyRepository(t *testing.T) {
	t.Run("serves cached reads", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCachingCompanyRepository(NewCompanyRepository(db), time.Minute)

		now := time.Now().UTC()
		_, err := repo.FirstOrCreate(context.Background(), "acme", "Acme Robotics", now)
		require.NoError(t, err)

		first, err := repo.FindByID(context.Background(), "acme")
		require.NoError(t, err)

		// Mutating the returned value must not leak into the cache.
		first.CompanyName = "mutated"

		second, err := repo.FindByID(context.Background(), "acme")
		require.NoError(t, err)
		assert.Equal(t, "Acme Robotics", second.CompanyName)
	})

	t.Run("save invalidates the cached row", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewCachingCompanyRepository(NewCompanyRepository(db), time.Minute)

		now := time.Now().UTC()
		company, err := repo.FirstOrCreate(context.Background(), "acme", "Acme Robotics", now)
		require.NoError(t, err)

		_, err = repo.FindByID(context.Background(), "acme")
		require.NoError(t, err)

		score := 7
		company.DealScore = &score
		require.NoError(t, repo.Save(context.Background(), company))

		found, err := repo.FindByID(context.Background(), "acme")
		require.NoError(t, err)
		require.NotNil(t, found.DealScore)
		assert.Equal(t, 7, *found.DealScore)
	})
}
