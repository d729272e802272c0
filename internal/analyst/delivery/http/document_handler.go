package http

import (
	"errors"
	"net/http"

	"dealflow-analyst/internal/analyst/dto"
	"dealflow-analyst/internal/analyst/service"
	"dealflow-analyst/internal/entity"
	"dealflow-analyst/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DocumentHandler handles HTTP requests for document intake and history.
type DocumentHandler struct {
	ingestService service.IngestService
	queryService  service.QueryService
	logger        *logger.Logger
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(ingestService service.IngestService, queryService service.QueryService, logger *logger.Logger) *DocumentHandler {
	return &DocumentHandler{ingestService: ingestService, queryService: queryService, logger: logger}
}

// RegisterRoutes registers the document routes to the Echo group.
func (h *DocumentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/documents", h.SubmitDocument)
	g.GET("/companies/:id/documents", h.ListCompanyDocuments)
}

// SubmitDocument godoc
// @Summary Submit a raw document
// @Description Append a raw document to the log and queue it for extraction and reconciliation
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   document  body    dto.SubmitDocumentRequest   true    "Document to submit"
// @Success 201 {object} dto.SubmitDocumentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /documents [post]
func (h *DocumentHandler) SubmitDocument(c echo.Context) error {
	var req dto.SubmitDocumentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.ingestService.SubmitDocument(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, entity.ErrDuplicateSource) {
			return c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "source_id already exists"})
		}
		h.logger.Error("Failed to submit document", logger.ErrorField(err))
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, resp)
}

// ListCompanyDocuments godoc
// @Summary List a company's documents
// @Description List all raw documents for a company ordered by received_at
// @Tags documents
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {array} entity.RawDocument
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies/{id}/documents [get]
func (h *DocumentHandler) ListCompanyDocuments(c echo.Context) error {
	companyID := c.Param("id")

	docs, err := h.queryService.ListDocuments(c.Request().Context(), companyID)
	if err != nil {
		if errors.Is(err, entity.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "company not found"})
		}
		h.logger.Error("Failed to list documents", logger.ErrorField(err), logger.StringField("company_id", companyID))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list documents"})
	}

	return c.JSON(http.StatusOK, docs)
}
