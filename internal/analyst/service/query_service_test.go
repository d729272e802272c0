package service

import (
	"context"
	"testing"
	"time"

	"dealflow-analyst/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryService_UnknownCompany(t *testing.T) {
	env := newTestEnv(t, &stubAIRepository{})
	querySvc := NewQueryService(env.companyRepo, env.docRepo, env.noteRepo)

	_, err := querySvc.GetCompany(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrCompanyNotFound)

	_, err = querySvc.ListDocuments(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrCompanyNotFound)

	_, err = querySvc.ListNotes(context.Background(), "missing")
	assert.ErrorIs(t, err, entity.ErrCompanyNotFound)
}

func TestQueryService_ListDocuments(t *testing.T) {
	env := newTestEnv(t, &stubAIRepository{})
	querySvc := NewQueryService(env.companyRepo, env.docRepo, env.noteRepo)
	seedCompany(t, env, "acme")

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"doc-2", "doc-1"} {
		doc := &entity.RawDocument{
			SourceID:       id,
			CompanyID:      "acme",
			CompanyName:    "Acme Robotics",
			SourceType:     entity.SourceTypeEmail,
			ReceivedAt:     base.Add(-time.Duration(i) * time.Hour),
			RawContentText: "update",
		}
		require.NoError(t, env.docRepo.Create(context.Background(), doc))
	}

	docs, err := querySvc.ListDocuments(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-1", docs[0].SourceID, "history reads oldest first")
}
