package entity

// Canonical company field keys, as used by the extraction contract and the
// per-field merge bookkeeping. These match the persisted column names.
const (
	FieldCompanyName          = "company_name"
	FieldSectorTags           = "sector_tags"
	FieldWebsite              = "website"
	FieldBusinessModel        = "business_model"
	FieldRevenueModel         = "revenue_model"
	FieldTAMSizeUSD           = "tam_size_usd"
	FieldSAMSizeUSD           = "sam_size_usd"
	FieldSOMSizeUSD           = "som_size_usd"
	FieldMarketTrends         = "market_trends"
	FieldCompetitors          = "competitors"
	FieldFounderNames         = "founder_names"
	FieldFounderExpertise     = "founder_expertise"
	FieldTeamSizeFulltime     = "team_size_fulltime"
	FieldRevenueMRRUSD        = "revenue_mrr_usd"
	FieldRevenueARRUSD        = "revenue_arr_usd"
	FieldCashOnHandUSD        = "cash_on_hand_usd"
	FieldBurnRateMonthlyUSD   = "burn_rate_monthly_usd"
	FieldRunwayMonths         = "runway_months"
	FieldCACUSD               = "cac_usd"
	FieldLTVUSD               = "ltv_usd"
	FieldLTVCACRatio          = "ltv_cac_ratio"
	FieldFundingStage         = "funding_stage"
	FieldRaiseAmountUSD       = "raise_amount_usd"
	FieldValuationPreMoneyUSD = "valuation_pre_money_usd"
	FieldValuationInstrument  = "valuation_instrument"
	FieldUseOfFundsSummary    = "use_of_funds_summary"
	FieldInvestmentThesis     = "investment_thesis"
	FieldKeyRisks             = "key_risks"
	FieldDealScore            = "deal_score"
)

// DefaultMaterialFields are the fields whose change warrants a fresh analyst
// note: traction/financial and deal attributes, including derived metrics.
// A cosmetic change (say, the website) does not trigger regeneration.
var DefaultMaterialFields = []string{
	FieldRevenueMRRUSD,
	FieldRevenueARRUSD,
	FieldCashOnHandUSD,
	FieldBurnRateMonthlyUSD,
	FieldRunwayMonths,
	FieldCACUSD,
	FieldLTVUSD,
	FieldLTVCACRatio,
	FieldFundingStage,
	FieldRaiseAmountUSD,
	FieldValuationPreMoneyUSD,
	FieldValuationInstrument,
}

// ExtractableFields lists every field the extraction collaborator may return,
// in schema order. Used to build the extraction prompt.
var ExtractableFields = []string{
	FieldCompanyName,
	FieldSectorTags,
	FieldWebsite,
	FieldBusinessModel,
	FieldRevenueModel,
	FieldTAMSizeUSD,
	FieldSAMSizeUSD,
	FieldSOMSizeUSD,
	FieldMarketTrends,
	FieldCompetitors,
	FieldFounderNames,
	FieldFounderExpertise,
	FieldTeamSizeFulltime,
	FieldRevenueMRRUSD,
	FieldRevenueARRUSD,
	FieldCashOnHandUSD,
	FieldBurnRateMonthlyUSD,
	FieldCACUSD,
	FieldLTVUSD,
	FieldFundingStage,
	FieldRaiseAmountUSD,
	FieldValuationPreMoneyUSD,
	FieldValuationInstrument,
	FieldUseOfFundsSummary,
	FieldInvestmentThesis,
	FieldKeyRisks,
}
