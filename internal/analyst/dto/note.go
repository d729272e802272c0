package dto

// NoteGenerationResult is the output of the note-generation collaborator: the
// full Markdown note prose and a candidate deal score. The score is clamped
// into the valid range before being written back to the company.
type NoteGenerationResult struct {
	NoteContent string `json:"note_content"`
	DealScore   int    `json:"deal_score"`
}
