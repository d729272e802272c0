package entity

import "time"

// AnalystNote is an immutable, versioned deal note generated from a company
// snapshot. For a fixed company_id the versions form a strictly increasing
// sequence starting at 1 with no gaps; the unique index enforces that two
// concurrent writers can never both land the same version.
type AnalystNote struct {
	NoteID      string    `gorm:"primaryKey;type:varchar(100)" json:"note_id"`
	CompanyID   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_analyst_notes_company_version" json:"company_id"`
	CompanyName string    `gorm:"type:varchar(255);not null" json:"company_name"`
	GeneratedAt time.Time `gorm:"not null" json:"generated_at"`
	NoteVersion int       `gorm:"not null;uniqueIndex:idx_analyst_notes_company_version" json:"note_version"`
	NoteContent string    `gorm:"type:text;not null" json:"note_content"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the AnalystNote model.
func (AnalystNote) TableName() string {
	return "analyst_notes"
}
