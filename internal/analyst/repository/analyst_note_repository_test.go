package repository

import (
	"context"
	"testing"
	"time"

	"dealflow-analyst/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNote(noteID, companyID string, version int) *entity.AnalystNote {
	return &entity.AnalystNote{
		NoteID:      noteID,
		CompanyID:   companyID,
		CompanyName: "Acme Robotics",
		GeneratedAt: time.Now().UTC(),
		NoteVersion: version,
		NoteContent: "## Summary\nLooks promising.",
	}
}

func TestAnalystNoteRepository_Create(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAnalystNoteRepository(db)

		err := repo.Create(context.Background(), newTestNote("note-1", "acme", 1))
		assert.NoError(t, err)
	})

	t.Run("colliding version is rejected", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAnalystNoteRepository(db)

		require.NoError(t, repo.Create(context.Background(), newTestNote("note-1", "acme", 1)))

		err := repo.Create(context.Background(), newTestNote("note-2", "acme", 1))
		assert.ErrorIs(t, err, entity.ErrVersionConflict)

		notes, err := repo.FindByCompany(context.Background(), "acme")
		require.NoError(t, err)
		assert.Len(t, notes, 1, "conflicting write must not land")
	})

	t.Run("same version for different companies is fine", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewAnalystNoteRepository(db)

		require.NoError(t, repo.Create(context.Background(), newTestNote("note-1", "acme", 1)))
		assert.NoError(t, repo.Create(context.Background(), newTestNote("note-2", "globex", 1)))
	})
}

func TestAnalystNoteRepository_FindByCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalystNoteRepository(db)

	require.NoError(t, repo.Create(context.Background(), newTestNote("note-2", "acme", 2)))
	require.NoError(t, repo.Create(context.Background(), newTestNote("note-1", "acme", 1)))
	require.NoError(t, repo.Create(context.Background(), newTestNote("note-3", "globex", 1)))

	notes, err := repo.FindByCompany(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, 1, notes[0].NoteVersion, "notes must be ordered by version ascending")
	assert.Equal(t, 2, notes[1].NoteVersion)
}

func TestAnalystNoteRepository_MaxVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAnalystNoteRepository(db)

	version, err := repo.MaxVersion(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 0, version, "company without notes starts at 0")

	require.NoError(t, repo.Create(context.Background(), newTestNote("note-1", "acme", 1)))
	require.NoError(t, repo.Create(context.Background(), newTestNote("note-2", "acme", 2)))

	version, err = repo.MaxVersion(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}
