package service

import (
	"testing"
	"time"

	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newReconciledCompany(t *testing.T, candidates ...dto.FieldCandidate) (*entity.Company, []string) {
	t.Helper()
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}
	changed, err := r.Merge(company, candidates)
	require.NoError(t, err)
	return company, changed
}

func TestReconciler_AdoptsUnsetFields(t *testing.T) {
	company, changed := newReconciledCompany(t,
		candidate(entity.FieldRevenueMRRUSD, 12000.0, 0.4, t0),
		candidate(entity.FieldFundingStage, "seed", 0.9, t0),
	)

	require.NotNil(t, company.RevenueMRRUSD)
	assert.Equal(t, 12000.0, *company.RevenueMRRUSD, "even low confidence fills an unset field")
	require.NotNil(t, company.FundingStage)
	assert.Equal(t, "seed", *company.FundingStage)
	assert.ElementsMatch(t, []string{entity.FieldRevenueMRRUSD, entity.FieldFundingStage}, changed)
}

func TestReconciler_HigherConfidenceReplaces(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 10000.0, 0.5, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 15000.0, 0.9, t0.Add(-time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, 15000.0, *company.RevenueMRRUSD, "higher confidence wins even from an older document")
	assert.Equal(t, []string{entity.FieldRevenueMRRUSD}, changed)
}

func TestReconciler_LowerConfidenceIgnored(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 10000.0, 0.9, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 99999.0, 0.3, t0.Add(-time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, 10000.0, *company.RevenueMRRUSD)
	assert.Empty(t, changed)

	states, err := company.FieldStateMap()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, states[entity.FieldRevenueMRRUSD].Confidence, 1e-9, "losing candidate must not touch the bookkeeping")
}

func TestReconciler_NewerWithEqualConfidenceReplaces(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldCashOnHandUSD, 100000.0, 0.8, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldCashOnHandUSD, 80000.0, 0.8, t0.Add(time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, 80000.0, *company.CashOnHandUSD, "fresher data with equal confidence wins")
	assert.Equal(t, []string{entity.FieldCashOnHandUSD}, changed)
}

func TestReconciler_OlderWithEqualConfidenceIgnored(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldCashOnHandUSD, 100000.0, 0.8, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldCashOnHandUSD, 80000.0, 0.8, t0.Add(-time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, 100000.0, *company.CashOnHandUSD)
	assert.Empty(t, changed)
}

func TestReconciler_SameBatchConflictPicksHighestConfidence(t *testing.T) {
	company, _ := newReconciledCompany(t,
		candidate(entity.FieldRevenueMRRUSD, 10000.0, 0.4, t0),
		candidate(entity.FieldRevenueMRRUSD, 12000.0, 0.8, t0),
		candidate(entity.FieldRevenueMRRUSD, 11000.0, 0.6, t0),
	)

	assert.Equal(t, 12000.0, *company.RevenueMRRUSD)
}

func TestReconciler_ListsUnionCaseInsensitively(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldCompetitors, []any{"Globex", "Initech"}, 0.7, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldCompetitors, []any{"globex", "Hooli"}, 0.9, t0.Add(time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Globex", "Initech", "Hooli"}, []string(company.Competitors),
		"union preserves first appearance and dedups case-insensitively")
	assert.Equal(t, []string{entity.FieldCompetitors}, changed)
}

func TestReconciler_ListDuplicatesReportNoChange(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldSectorTags, []any{"robotics"}, 0.7, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldSectorTags, []any{"ROBOTICS"}, 0.9, t0.Add(time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"robotics"}, []string(company.SectorTags))
	assert.Empty(t, changed)
}

func TestReconciler_MoneyShorthandStringCoerced(t *testing.T) {
	company, changed := newReconciledCompany(t,
		candidate(entity.FieldRaiseAmountUSD, "$1.5M", 0.8, t0),
	)

	require.NotNil(t, company.RaiseAmountUSD)
	assert.Equal(t, 1500000.0, *company.RaiseAmountUSD)
	assert.Equal(t, []string{entity.FieldRaiseAmountUSD}, changed)
}

func TestReconciler_UnusableValueSkipped(t *testing.T) {
	company, changed := newReconciledCompany(t,
		candidate(entity.FieldRevenueMRRUSD, "a lot", 0.8, t0),
		candidate(entity.FieldFundingStage, "seed", 0.8, t0),
	)

	assert.Nil(t, company.RevenueMRRUSD, "unparseable value is dropped, not stored")
	assert.Equal(t, []string{entity.FieldFundingStage}, changed)
}

func TestReconciler_SameValueUpdatesBookkeepingOnly(t *testing.T) {
	r := NewReconciler(0, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 10000.0, 0.5, t0),
	})
	require.NoError(t, err)

	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 10000.0, 0.9, t0.Add(time.Hour)),
	})
	require.NoError(t, err)

	assert.Empty(t, changed, "identical value is not a change")

	states, err := company.FieldStateMap()
	require.NoError(t, err)
	assert.InDelta(t, 0.9, states[entity.FieldRevenueMRRUSD].Confidence, 1e-9, "confidence still moves forward")
}

func TestReconciler_MarginBlocksMarginalWins(t *testing.T) {
	r := NewReconciler(0.2, logger.NewNop())
	company := &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"}

	_, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 10000.0, 0.5, t0),
	})
	require.NoError(t, err)

	// 0.6 beats 0.5 but not by the 0.2 margin, and the timestamp is older.
	changed, err := r.Merge(company, []dto.FieldCandidate{
		candidate(entity.FieldRevenueMRRUSD, 20000.0, 0.6, t0.Add(-time.Hour)),
	})
	require.NoError(t, err)

	assert.Equal(t, 10000.0, *company.RevenueMRRUSD)
	assert.Empty(t, changed)
}
