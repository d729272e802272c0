package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubQueryService struct {
	company *entity.Company
	docs    []entity.RawDocument
	notes   []entity.AnalystNote
	err     error
}

func (s *stubQueryService) GetCompany(ctx context.Context, companyID string) (*entity.Company, error) {
	return s.company, s.err
}

func (s *stubQueryService) ListDocuments(ctx context.Context, companyID string) ([]entity.RawDocument, error) {
	return s.docs, s.err
}

func (s *stubQueryService) ListNotes(ctx context.Context, companyID string) ([]entity.AnalystNote, error) {
	return s.notes, s.err
}

type stubIngestService struct {
	resp *dto.SubmitDocumentResponse
	err  error
}

func (s *stubIngestService) SubmitDocument(ctx context.Context, req *dto.SubmitDocumentRequest) (*dto.SubmitDocumentResponse, error) {
	return s.resp, s.err
}

func (s *stubIngestService) ProcessDocument(ctx context.Context, sourceID string) error {
	return nil
}

func TestCompanyHandler_GetCompany(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		handler := NewCompanyHandler(&stubQueryService{
			company: &entity.Company{CompanyID: "acme", CompanyName: "Acme Robotics"},
		}, logger.NewNop())

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("acme")

		require.NoError(t, handler.GetCompany(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var body entity.Company
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "Acme Robotics", body.CompanyName)
	})

	t.Run("not found", func(t *testing.T) {
		handler := NewCompanyHandler(&stubQueryService{err: entity.ErrCompanyNotFound}, logger.NewNop())

		e := echo.New()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetParamNames("id")
		c.SetParamValues("missing")

		require.NoError(t, handler.GetCompany(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDocumentHandler_SubmitDocument(t *testing.T) {
	payload := `{"company_name":"Acme Robotics","source_type":"pitch_deck","raw_content_text":"deck"}`

	t.Run("accepted", func(t *testing.T) {
		handler := NewDocumentHandler(&stubIngestService{
			resp: &dto.SubmitDocumentResponse{SourceID: "doc-1", CompanyID: "acme"},
		}, &stubQueryService{}, logger.NewNop())

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.SubmitDocument(c))
		assert.Equal(t, http.StatusCreated, rec.Code)

		var body dto.SubmitDocumentResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "doc-1", body.SourceID)
	})

	t.Run("duplicate source_id", func(t *testing.T) {
		handler := NewDocumentHandler(&stubIngestService{err: entity.ErrDuplicateSource}, &stubQueryService{}, logger.NewNop())

		e := echo.New()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		require.NoError(t, handler.SubmitDocument(c))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestNoteHandler_ListCompanyNotes(t *testing.T) {
	handler := NewNoteHandler(&stubQueryService{
		notes: []entity.AnalystNote{
			{NoteID: "note-1", CompanyID: "acme", NoteVersion: 1},
			{NoteID: "note-2", CompanyID: "acme", NoteVersion: 2},
		},
	}, nil, logger.NewNop())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("acme")

	require.NoError(t, handler.ListCompanyNotes(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var notes []entity.AnalystNote
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notes))
	assert.Len(t, notes, 2)
}
