package entity

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// FieldState is the merge bookkeeping for a single company field: the
// confidence and extraction timestamp of the value currently held. It is
// persisted alongside the row but never exposed through the API.
type FieldState struct {
	Confidence  float64   `json:"confidence"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Company is the authoritative, mutable record for a single startup. It is
// created on the first document for a new company_id and only ever mutated
// through reconciliation afterwards.
type Company struct {
	CompanyID     string    `gorm:"primaryKey;type:varchar(100)" json:"company_id"`
	CompanyName   string    `gorm:"type:varchar(255);not null" json:"company_name"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`

	SectorTags    pq.StringArray `gorm:"type:text[]" json:"sector_tags"`
	Website       *string        `gorm:"type:varchar(255)" json:"website"`
	BusinessModel *string        `gorm:"type:varchar(50)" json:"business_model"`
	RevenueModel  *string        `gorm:"type:varchar(50)" json:"revenue_model"`

	TAMSizeUSD   *float64       `gorm:"column:tam_size_usd" json:"tam_size_usd"`
	SAMSizeUSD   *float64       `gorm:"column:sam_size_usd" json:"sam_size_usd"`
	SOMSizeUSD   *float64       `gorm:"column:som_size_usd" json:"som_size_usd"`
	MarketTrends *string        `gorm:"type:text" json:"market_trends"`
	Competitors  pq.StringArray `gorm:"type:text[]" json:"competitors"`

	FounderNames     pq.StringArray `gorm:"type:text[]" json:"founder_names"`
	FounderExpertise *string        `gorm:"type:text" json:"founder_expertise"`
	TeamSizeFulltime *int           `json:"team_size_fulltime"`

	RevenueMRRUSD      *float64 `gorm:"column:revenue_mrr_usd" json:"revenue_mrr_usd"`
	RevenueARRUSD      *float64 `gorm:"column:revenue_arr_usd" json:"revenue_arr_usd"`
	CashOnHandUSD      *float64 `gorm:"column:cash_on_hand_usd" json:"cash_on_hand_usd"`
	BurnRateMonthlyUSD *int64   `gorm:"column:burn_rate_monthly_usd" json:"burn_rate_monthly_usd"`
	RunwayMonths       *int     `json:"runway_months"`
	CACUSD             *float64 `gorm:"column:cac_usd" json:"cac_usd"`
	LTVUSD             *float64 `gorm:"column:ltv_usd" json:"ltv_usd"`
	LTVCACRatio        *float64 `gorm:"column:ltv_cac_ratio" json:"ltv_cac_ratio"`

	FundingStage         *string  `gorm:"type:varchar(50)" json:"funding_stage"`
	RaiseAmountUSD       *float64 `gorm:"column:raise_amount_usd" json:"raise_amount_usd"`
	ValuationPreMoneyUSD *float64 `gorm:"column:valuation_pre_money_usd" json:"valuation_pre_money_usd"`
	ValuationInstrument  *string  `gorm:"type:varchar(50)" json:"valuation_instrument"`
	UseOfFundsSummary    *string  `gorm:"type:text" json:"use_of_funds_summary"`

	InvestmentThesis *string `gorm:"type:text" json:"investment_thesis"`
	KeyRisks         *string `gorm:"type:text" json:"key_risks"`
	DealScore        *int    `json:"deal_score"`

	FieldStates datatypes.JSON `gorm:"column:field_states" json:"-"`
}

// TableName specifies the table name for the Company model.
func (Company) TableName() string {
	return "companies"
}

// FieldStateMap decodes the per-field merge bookkeeping. A missing or empty
// column yields an empty map.
func (c *Company) FieldStateMap() (map[string]FieldState, error) {
	states := make(map[string]FieldState)
	if len(c.FieldStates) == 0 {
		return states, nil
	}
	if err := json.Unmarshal(c.FieldStates, &states); err != nil {
		return nil, err
	}
	return states, nil
}

// SetFieldStateMap encodes the per-field merge bookkeeping back onto the row.
func (c *Company) SetFieldStateMap(states map[string]FieldState) error {
	raw, err := json.Marshal(states)
	if err != nil {
		return err
	}
	c.FieldStates = datatypes.JSON(raw)
	return nil
}
