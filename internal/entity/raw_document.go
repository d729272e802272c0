package entity

import "time"

// SourceType categorizes where a raw document came from.
type SourceType string

const (
	SourceTypePitchDeck      SourceType = "pitch_deck"
	SourceTypeEmail          SourceType = "email"
	SourceTypeCallTranscript SourceType = "call_transcript"
	SourceTypeChecklist      SourceType = "checklist"
	SourceTypeFounderListing SourceType = "founder_listing"
	SourceTypeNewsReport     SourceType = "news_report"
	SourceTypeOther          SourceType = "other"
)

// DocumentStatus tracks pipeline progress for a raw document. The document
// content itself is immutable; only this bookkeeping moves.
type DocumentStatus string

const (
	// DocumentStatusPending means the document is appended but not yet reconciled.
	DocumentStatusPending DocumentStatus = "pending"
	// DocumentStatusProcessed means extraction and reconciliation completed.
	DocumentStatusProcessed DocumentStatus = "processed"
	// DocumentStatusUnprocessed means extraction exhausted its retries and the
	// document awaits manual review.
	DocumentStatusUnprocessed DocumentStatus = "unprocessed"
)

// RawDocument is one append-only source document about a company. The
// company_name is a denormalized snapshot at receipt time and may drift from
// the company's current name.
type RawDocument struct {
	SourceID       string         `gorm:"primaryKey;type:varchar(100)" json:"source_id"`
	CompanyID      string         `gorm:"type:varchar(100);index;not null" json:"company_id"`
	CompanyName    string         `gorm:"type:varchar(255);not null" json:"company_name"`
	SourceType     SourceType     `gorm:"type:varchar(50);not null" json:"source_type"`
	ReceivedAt     time.Time      `gorm:"not null" json:"received_at"`
	FileName       string         `gorm:"type:varchar(255)" json:"file_name"`
	RawContentText string         `gorm:"type:text" json:"raw_content_text"`
	Status         DocumentStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	ProcessedAt    *time.Time     `json:"processed_at,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the RawDocument model.
func (RawDocument) TableName() string {
	return "raw_documents"
}
