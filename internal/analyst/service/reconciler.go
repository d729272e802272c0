package service

import (
	"fmt"
	"math"
	"strings"

	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/utils"

	"github.com/lib/pq"
)

// Reconciler folds extracted field candidates into a company record under the
// confidence-and-recency merge policy. It is pure state transformation; it
// never touches storage.
type Reconciler struct {
	// margin is how much a candidate's confidence must exceed the recorded
	// confidence to replace a set field. Zero means strictly greater.
	margin float64
	logger *logger.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(margin float64, log *logger.Logger) *Reconciler {
	return &Reconciler{margin: margin, logger: log}
}

// Merge applies candidates to company and returns the names of fields whose
// public value actually changed. Per field, only the highest-confidence
// candidate from the batch is considered. A candidate wins against the
// recorded state when the field is unset, when its confidence beats the
// recorded confidence by more than the margin, or when it is newer with at
// least equal confidence. List fields union instead of replacing. Confidence
// bookkeeping is updated on every win, even when the value is identical.
func (r *Reconciler) Merge(company *entity.Company, candidates []dto.FieldCandidate) ([]string, error) {
	states, err := company.FieldStateMap()
	if err != nil {
		return nil, fmt.Errorf("failed to decode field states: %w", err)
	}

	best := make(map[string]dto.FieldCandidate)
	for _, cand := range candidates {
		cur, ok := best[cand.Field]
		if !ok || cand.Confidence > cur.Confidence {
			best[cand.Field] = cand
		}
	}

	var changed []string
	for _, field := range entity.ExtractableFields {
		cand, ok := best[field]
		if !ok {
			continue
		}

		applier, ok := fieldAppliers[field]
		if !ok {
			r.logger.Warn("No applier for extracted field", logger.StringField("field", field))
			continue
		}

		if !r.wins(cand, applier.isSet(company), states) {
			continue
		}

		valueChanged, err := applier.apply(company, cand.Value)
		if err != nil {
			r.logger.Warn("Dropping candidate with unusable value",
				logger.StringField("field", field),
				logger.Field("value", cand.Value),
				logger.ErrorField(err),
			)
			continue
		}

		states[field] = entity.FieldState{
			Confidence:  cand.Confidence,
			ExtractedAt: cand.ExtractedAt,
		}
		if valueChanged {
			changed = append(changed, field)
		}
	}

	if err := company.SetFieldStateMap(states); err != nil {
		return nil, fmt.Errorf("failed to encode field states: %w", err)
	}
	return changed, nil
}

func (r *Reconciler) wins(cand dto.FieldCandidate, isSet bool, states map[string]entity.FieldState) bool {
	st, has := states[cand.Field]
	if !isSet || !has {
		return true
	}
	if cand.Confidence > st.Confidence+r.margin {
		return true
	}
	return cand.ExtractedAt.After(st.ExtractedAt) && cand.Confidence >= st.Confidence
}

// fieldApplier knows whether a company field is set and how to write a
// candidate value into it. apply reports whether the public value changed.
type fieldApplier struct {
	isSet func(*entity.Company) bool
	apply func(*entity.Company, any) (bool, error)
}

var fieldAppliers = map[string]fieldApplier{
	entity.FieldCompanyName: {
		isSet: func(c *entity.Company) bool { return c.CompanyName != "" },
		apply: func(c *entity.Company, v any) (bool, error) {
			s, err := coerceString(v)
			if err != nil {
				return false, err
			}
			changed := c.CompanyName != s
			c.CompanyName = s
			return changed, nil
		},
	},
	entity.FieldSectorTags: {
		isSet: func(c *entity.Company) bool { return len(c.SectorTags) > 0 },
		apply: func(c *entity.Company, v any) (bool, error) { return applyList(&c.SectorTags, v) },
	},
	entity.FieldWebsite: {
		isSet: func(c *entity.Company) bool { return c.Website != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.Website, v) },
	},
	entity.FieldBusinessModel: {
		isSet: func(c *entity.Company) bool { return c.BusinessModel != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.BusinessModel, v) },
	},
	entity.FieldRevenueModel: {
		isSet: func(c *entity.Company) bool { return c.RevenueModel != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.RevenueModel, v) },
	},
	entity.FieldTAMSizeUSD: {
		isSet: func(c *entity.Company) bool { return c.TAMSizeUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.TAMSizeUSD, v) },
	},
	entity.FieldSAMSizeUSD: {
		isSet: func(c *entity.Company) bool { return c.SAMSizeUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.SAMSizeUSD, v) },
	},
	entity.FieldSOMSizeUSD: {
		isSet: func(c *entity.Company) bool { return c.SOMSizeUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.SOMSizeUSD, v) },
	},
	entity.FieldMarketTrends: {
		isSet: func(c *entity.Company) bool { return c.MarketTrends != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.MarketTrends, v) },
	},
	entity.FieldCompetitors: {
		isSet: func(c *entity.Company) bool { return len(c.Competitors) > 0 },
		apply: func(c *entity.Company, v any) (bool, error) { return applyList(&c.Competitors, v) },
	},
	entity.FieldFounderNames: {
		isSet: func(c *entity.Company) bool { return len(c.FounderNames) > 0 },
		apply: func(c *entity.Company, v any) (bool, error) { return applyList(&c.FounderNames, v) },
	},
	entity.FieldFounderExpertise: {
		isSet: func(c *entity.Company) bool { return c.FounderExpertise != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.FounderExpertise, v) },
	},
	entity.FieldTeamSizeFulltime: {
		isSet: func(c *entity.Company) bool { return c.TeamSizeFulltime != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyInt(&c.TeamSizeFulltime, v) },
	},
	entity.FieldRevenueMRRUSD: {
		isSet: func(c *entity.Company) bool { return c.RevenueMRRUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.RevenueMRRUSD, v) },
	},
	entity.FieldRevenueARRUSD: {
		isSet: func(c *entity.Company) bool { return c.RevenueARRUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.RevenueARRUSD, v) },
	},
	entity.FieldCashOnHandUSD: {
		isSet: func(c *entity.Company) bool { return c.CashOnHandUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.CashOnHandUSD, v) },
	},
	entity.FieldBurnRateMonthlyUSD: {
		isSet: func(c *entity.Company) bool { return c.BurnRateMonthlyUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyInt64(&c.BurnRateMonthlyUSD, v) },
	},
	entity.FieldCACUSD: {
		isSet: func(c *entity.Company) bool { return c.CACUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.CACUSD, v) },
	},
	entity.FieldLTVUSD: {
		isSet: func(c *entity.Company) bool { return c.LTVUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.LTVUSD, v) },
	},
	entity.FieldFundingStage: {
		isSet: func(c *entity.Company) bool { return c.FundingStage != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.FundingStage, v) },
	},
	entity.FieldRaiseAmountUSD: {
		isSet: func(c *entity.Company) bool { return c.RaiseAmountUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.RaiseAmountUSD, v) },
	},
	entity.FieldValuationPreMoneyUSD: {
		isSet: func(c *entity.Company) bool { return c.ValuationPreMoneyUSD != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyFloat(&c.ValuationPreMoneyUSD, v) },
	},
	entity.FieldValuationInstrument: {
		isSet: func(c *entity.Company) bool { return c.ValuationInstrument != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.ValuationInstrument, v) },
	},
	entity.FieldUseOfFundsSummary: {
		isSet: func(c *entity.Company) bool { return c.UseOfFundsSummary != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.UseOfFundsSummary, v) },
	},
	entity.FieldInvestmentThesis: {
		isSet: func(c *entity.Company) bool { return c.InvestmentThesis != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.InvestmentThesis, v) },
	},
	entity.FieldKeyRisks: {
		isSet: func(c *entity.Company) bool { return c.KeyRisks != nil },
		apply: func(c *entity.Company, v any) (bool, error) { return applyString(&c.KeyRisks, v) },
	},
}

func applyString(target **string, v any) (bool, error) {
	s, err := coerceString(v)
	if err != nil {
		return false, err
	}
	changed := *target == nil || **target != s
	*target = &s
	return changed, nil
}

func applyFloat(target **float64, v any) (bool, error) {
	f, err := coerceFloat(v)
	if err != nil {
		return false, err
	}
	changed := *target == nil || **target != f
	*target = &f
	return changed, nil
}

func applyInt(target **int, v any) (bool, error) {
	f, err := coerceFloat(v)
	if err != nil {
		return false, err
	}
	n := int(math.Round(f))
	changed := *target == nil || **target != n
	*target = &n
	return changed, nil
}

func applyInt64(target **int64, v any) (bool, error) {
	f, err := coerceFloat(v)
	if err != nil {
		return false, err
	}
	n := int64(math.Round(f))
	changed := *target == nil || **target != n
	*target = &n
	return changed, nil
}

// applyList unions new entries into the existing list, case-insensitively,
// preserving first-appearance order. Entries are never removed.
func applyList(target *pq.StringArray, v any) (bool, error) {
	incoming, err := coerceStringSlice(v)
	if err != nil {
		return false, err
	}

	seen := make(map[string]bool, len(*target))
	for _, existing := range *target {
		seen[strings.ToLower(strings.TrimSpace(existing))] = true
	}

	changed := false
	for _, item := range incoming {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		*target = append(*target, strings.TrimSpace(item))
		changed = true
	}
	return changed, nil
}

func coerceString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("empty string value")
	}
	return s, nil
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		return utils.ParseMoneyShorthand(n)
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
}

func coerceStringSlice(v any) ([]string, error) {
	switch list := v.(type) {
	case []string:
		return list, nil
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string list element, got %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		return []string{list}, nil
	default:
		return nil, fmt.Errorf("expected string list, got %T", v)
	}
}
