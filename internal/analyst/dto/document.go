package dto

import "time"

// SubmitDocumentRequest is the ingestion payload. SourceID and CompanyID are
// optional: a missing SourceID gets a generated UUID, a missing CompanyID is
// derived from the company name and intake date. Idempotent keying is the
// caller's responsibility; content is not deduplicated.
type SubmitDocumentRequest struct {
	SourceID       string     `json:"source_id,omitempty"`
	CompanyID      string     `json:"company_id,omitempty"`
	CompanyName    string     `json:"company_name"`
	SourceType     string     `json:"source_type"`
	FileName       string     `json:"file_name,omitempty"`
	RawContentText string     `json:"raw_content_text"`
	ReceivedAt     *time.Time `json:"received_at,omitempty"`
}

// SubmitDocumentResponse acknowledges an accepted document.
type SubmitDocumentResponse struct {
	SourceID  string `json:"source_id"`
	CompanyID string `json:"company_id"`
}
