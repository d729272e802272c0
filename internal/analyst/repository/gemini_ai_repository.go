package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dealflow-analyst/internal/analyst/config"
	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/logger"
	"dealflow-analyst/pkg/ratelimit"
	"dealflow-analyst/pkg/utils"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// geminiAIRepository is an implementation of AIRepository that uses the Google
// Gemini API for field extraction and note generation.
type geminiAIRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
	genAiClient    *genai.Client
}

// NewGeminiAIRepository creates a new instance of geminiAIRepository.
func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger, genAiClient *genai.Client) (AIRepository, error) {
	secondsPerRequest := time.Minute / time.Duration(cfg.Gemini.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	tokenLimiter := ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinute)

	return &geminiAIRepository{
		client: &http.Client{
			Timeout: 90 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
		tokenLimiter:   tokenLimiter,
		genAiClient:    genAiClient,
	}, nil
}

// ExtractFields asks Gemini for field candidates found in a raw document.
func (r *geminiAIRepository) ExtractFields(ctx context.Context, doc *entity.RawDocument) (*dto.ExtractionResult, error) {
	prompt := BuildExtractFieldsPrompt(doc)

	geminiResp, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return r.parseExtractionResponse(geminiResp, doc)
}

// GenerateNote asks Gemini for a markdown deal note and a deal score.
func (r *geminiAIRepository) GenerateNote(ctx context.Context, company *entity.Company, recentDocs []entity.RawDocument) (*dto.NoteGenerationResult, error) {
	prompt := BuildDealNotePrompt(company, recentDocs)

	geminiResp, err := r.executeGeminiAIRequest(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return r.parseNoteResponse(geminiResp)
}

func (r *geminiAIRepository) executeGeminiAIRequest(ctx context.Context, prompt string) (*dto.GeminiAPIResponse, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}
	geminiTokenResp, err := r.genAiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to count tokens: %w", err)
	}

	r.logger.Debug("Gemini token count",
		logger.IntField("total_tokens", int(geminiTokenResp.TotalTokens)),
		logger.IntField("remaining", r.tokenLimiter.GetRemaining()),
	)

	if err := r.tokenLimiter.Wait(ctx, int(geminiTokenResp.TotalTokens)); err != nil {
		return nil, fmt.Errorf("failed to wait for token limit: %w", err)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	if int(geminiTokenResp.TotalTokens) > r.cfg.Gemini.MaxTokenPerMinute/2 {
		r.logger.Warn("Token has exceeded 50% of the limit", logger.IntField("remaining", r.tokenLimiter.GetRemaining()))
	}

	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Parts: []dto.Part{{Text: prompt}}}},
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error("Failed to marshal payload", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	apiURL := fmt.Sprintf("%s/%s:generateContent?key=%s", r.cfg.Gemini.BaseURL, r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		r.logger.Error("Failed to create new http request", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Error("Failed to send request to Gemini API", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to send request to Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from Gemini API", logger.IntField("status_code", resp.StatusCode))
		return nil, fmt.Errorf("received non-OK response from Gemini API: %d - %s", resp.StatusCode, string(body))
	}

	var geminiResp dto.GeminiAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&geminiResp); err != nil {
		r.logger.Error("Failed to decode response body", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	return &geminiResp, nil
}

// parseExtractionResponse converts the model's JSON into field candidates.
// Candidates are stamped with the document's received_at so merge recency
// follows document time, not processing time. Unknown field names and
// out-of-range confidences are dropped rather than failing the document.
func (r *geminiAIRepository) parseExtractionResponse(resp *dto.GeminiAPIResponse, doc *entity.RawDocument) (*dto.ExtractionResult, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	jsonString := resp.Candidates[0].Content.Parts[0].Text
	jsonString = strings.Trim(jsonString, "`json\n`")

	var payload dto.ExtractionPayload
	if err := json.Unmarshal([]byte(jsonString), &payload); err != nil {
		r.logger.Error("Failed to unmarshal extraction result from Gemini response", logger.ErrorField(err), logger.StringField("response", jsonString))
		return nil, fmt.Errorf("failed to unmarshal extraction result from Gemini response: %w", err)
	}

	result := &dto.ExtractionResult{SourceID: doc.SourceID}
	for _, f := range payload.Fields {
		if !isExtractableField(f.Field) {
			r.logger.Warn("Dropping unknown extracted field", logger.StringField("field", f.Field), logger.StringField("source_id", doc.SourceID))
			continue
		}
		if f.Confidence < 0 || f.Confidence > 1 {
			r.logger.Warn("Dropping extracted field with invalid confidence", logger.StringField("field", f.Field), logger.Field("confidence", f.Confidence))
			continue
		}
		result.Candidates = append(result.Candidates, dto.FieldCandidate{
			Field:       f.Field,
			Value:       normalizeExtractedValue(f.Field, f.Value),
			Confidence:  f.Confidence,
			ExtractedAt: doc.ReceivedAt,
		})
	}

	return result, nil
}

func (r *geminiAIRepository) parseNoteResponse(resp *dto.GeminiAPIResponse) (*dto.NoteGenerationResult, error) {
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no content found in Gemini response")
	}

	rawJSON := resp.Candidates[0].Content.Parts[0].Text
	rawJSON = strings.Trim(rawJSON, "`json\n`")

	var result dto.NoteGenerationResult
	if err := json.Unmarshal([]byte(rawJSON), &result); err != nil {
		r.logger.Error("Failed to unmarshal note result from Gemini response", logger.ErrorField(err), logger.StringField("response", rawJSON))
		return nil, fmt.Errorf("failed to unmarshal note result from Gemini response: %w", err)
	}
	if result.NoteContent == "" {
		return nil, fmt.Errorf("note generation returned empty note content")
	}

	return &result, nil
}

func isExtractableField(field string) bool {
	for _, f := range entity.ExtractableFields {
		if f == field {
			return true
		}
	}
	return false
}

var moneyFields = map[string]bool{
	entity.FieldTAMSizeUSD:           true,
	entity.FieldSAMSizeUSD:           true,
	entity.FieldSOMSizeUSD:           true,
	entity.FieldRevenueMRRUSD:        true,
	entity.FieldRevenueARRUSD:        true,
	entity.FieldCashOnHandUSD:        true,
	entity.FieldBurnRateMonthlyUSD:   true,
	entity.FieldCACUSD:               true,
	entity.FieldLTVUSD:               true,
	entity.FieldRaiseAmountUSD:       true,
	entity.FieldValuationPreMoneyUSD: true,
}

// normalizeExtractedValue expands money shorthand the model passed through as
// a string ("$120k") into a plain number. Non-monetary fields go through
// untouched.
func normalizeExtractedValue(field string, value any) any {
	if !moneyFields[field] {
		return value
	}
	s, ok := value.(string)
	if !ok {
		return value
	}
	if amount, err := utils.ParseMoneyShorthand(s); err == nil {
		return amount
	}
	return value
}
