package repository

import (
	"fmt"
	"strings"

	"dealflow-analyst/internal/entity"
)

func BuildExtractFieldsPrompt(doc *entity.RawDocument) string {
	fieldList := strings.Join(entity.ExtractableFields, ", ")

	return fmt.Sprintf(`You are a venture capital analyst assistant. Extract structured deal fields from the raw document below.

Allowed field names (use ONLY these, snake_case, omit any field the document does not mention):
%s

Extraction rules:
- confidence is a float between 0.0 (pure guess) and 1.0 (stated verbatim in the document).
- Monetary values: return plain numbers in USD. Expand shorthand yourself ("$120k" -> 120000, "$3.5M" -> 3500000). If you cannot expand it, return the original string and it will be normalized downstream.
- revenue_mrr_usd and burn_rate_monthly_usd are MONTHLY figures; revenue_arr_usd, cash_on_hand_usd, raise_amount_usd, valuation_pre_money_usd, tam_size_usd, sam_size_usd, som_size_usd and ltv_usd are totals.
- sector_tags, competitors and founder_names are arrays of strings.
- Do NOT invent values. A field that is merely implied gets a low confidence; a field that is absent is omitted entirely.
- Do NOT compute derived figures (runway_months, ltv_cac_ratio, revenue_arr_usd from revenue_mrr_usd); report only what the document states.

Return ONLY JSON with this structure:
{
  "fields": [
    {
      "field": "<one of the allowed field names>",
      "value": <number | string | array of strings>,
      "confidence": <float 0.0-1.0>
    }
  ]
}

Document metadata:
Source Type: %s
File Name: %s
Received At: %s

Raw Content:
%s
`, fieldList, doc.SourceType, doc.FileName, doc.ReceivedAt.Format("2006-01-02 15:04:05"), doc.RawContentText)
}

func BuildDealNotePrompt(company *entity.Company, recentDocs []entity.RawDocument) string {
	var docsBuilder strings.Builder
	if len(recentDocs) == 0 {
		docsBuilder.WriteString("(no recent documents)\n")
	}
	for i, doc := range recentDocs {
		excerpt := doc.RawContentText
		if len(excerpt) > 2000 {
			excerpt = excerpt[:2000] + "..."
		}
		docsBuilder.WriteString(fmt.Sprintf(
			"%d. Source Type: %s\n   Received At: %s\n   Excerpt: %s\n\n",
			i+1, doc.SourceType, doc.ReceivedAt.Format("2006-01-02 15:04:05"), excerpt,
		))
	}

	profileBuilder := &strings.Builder{}
	writeProfileString(profileBuilder, "Company Name", &company.CompanyName)
	writeProfileList(profileBuilder, "Sector Tags", company.SectorTags)
	writeProfileString(profileBuilder, "Website", company.Website)
	writeProfileString(profileBuilder, "Business Model", company.BusinessModel)
	writeProfileString(profileBuilder, "Revenue Model", company.RevenueModel)
	writeProfileFloat(profileBuilder, "TAM (USD)", company.TAMSizeUSD)
	writeProfileFloat(profileBuilder, "SAM (USD)", company.SAMSizeUSD)
	writeProfileFloat(profileBuilder, "SOM (USD)", company.SOMSizeUSD)
	writeProfileString(profileBuilder, "Market Trends", company.MarketTrends)
	writeProfileList(profileBuilder, "Competitors", company.Competitors)
	writeProfileList(profileBuilder, "Founders", company.FounderNames)
	writeProfileString(profileBuilder, "Founder Expertise", company.FounderExpertise)
	writeProfileInt(profileBuilder, "Full-Time Team Size", company.TeamSizeFulltime)
	writeProfileFloat(profileBuilder, "MRR (USD)", company.RevenueMRRUSD)
	writeProfileFloat(profileBuilder, "ARR (USD)", company.RevenueARRUSD)
	writeProfileFloat(profileBuilder, "Cash On Hand (USD)", company.CashOnHandUSD)
	if company.BurnRateMonthlyUSD != nil {
		fmt.Fprintf(profileBuilder, "- Monthly Burn (USD): %d\n", *company.BurnRateMonthlyUSD)
	}
	writeProfileInt(profileBuilder, "Runway (months)", company.RunwayMonths)
	writeProfileFloat(profileBuilder, "CAC (USD)", company.CACUSD)
	writeProfileFloat(profileBuilder, "LTV (USD)", company.LTVUSD)
	writeProfileFloat(profileBuilder, "LTV:CAC Ratio", company.LTVCACRatio)
	writeProfileString(profileBuilder, "Funding Stage", company.FundingStage)
	writeProfileFloat(profileBuilder, "Raise Amount (USD)", company.RaiseAmountUSD)
	writeProfileFloat(profileBuilder, "Pre-Money Valuation (USD)", company.ValuationPreMoneyUSD)
	writeProfileString(profileBuilder, "Valuation Instrument", company.ValuationInstrument)
	writeProfileString(profileBuilder, "Use Of Funds", company.UseOfFundsSummary)
	writeProfileString(profileBuilder, "Investment Thesis", company.InvestmentThesis)
	writeProfileString(profileBuilder, "Key Risks", company.KeyRisks)

	return fmt.Sprintf(`You are a venture capital analyst writing an internal deal memo. Using the reconciled company profile and recent source documents below, write a concise markdown note and score the deal.

Company Profile:
%s
Recent Documents (newest first):
%s
Note requirements:
- Markdown with these sections: "## Summary", "## Traction", "## Financials", "## Deal Terms", "## Risks", "## Open Questions".
- Ground every statement in the profile or documents; write "unknown" for fields that are missing rather than guessing.
- Keep it under 400 words.

Deal score rubric (integer 1-10):
- 1-3: weak; fundamental concerns (no traction, broken unit economics, tiny market).
- 4-6: mixed; some signal but significant open questions or mediocre metrics.
- 7-8: strong; clear traction, healthy unit economics (LTV:CAC >= 3), credible team.
- 9-10: exceptional; rare combination of growth, efficiency and market size.

Return ONLY JSON:
{
  "note_content": "<markdown string>",
  "deal_score": <integer 1-10>
}
`, profileBuilder.String(), docsBuilder.String())
}

func writeProfileString(b *strings.Builder, label string, value *string) {
	if value == nil || *value == "" {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, *value)
}

func writeProfileList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
}

func writeProfileFloat(b *strings.Builder, label string, value *float64) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, "- %s: %.2f\n", label, *value)
}

func writeProfileInt(b *strings.Builder, label string, value *int) {
	if value == nil {
		return
	}
	fmt.Fprintf(b, "- %s: %d\n", label, *value)
}
