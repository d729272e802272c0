package dto

import "time"

// FieldCandidate is one extracted value proposal for a company field. The
// extractor may return several candidates for the same field from a single
// document; the reconciler keeps the highest-confidence one before applying
// the merge policy.
type FieldCandidate struct {
	Field       string    `json:"field"`
	Value       any       `json:"value"`
	Confidence  float64   `json:"confidence"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// ExtractionResult is the output of the field-extraction collaborator for one
// raw document. An empty candidate list is valid and causes no mutation.
type ExtractionResult struct {
	SourceID   string           `json:"source_id"`
	Candidates []FieldCandidate `json:"candidates"`
}
