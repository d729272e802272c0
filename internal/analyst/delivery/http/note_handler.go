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

// NoteHandler handles HTTP requests for the analyst note ledger.
type NoteHandler struct {
	queryService service.QueryService
	noteService  service.NoteService
	logger       *logger.Logger
}

// NewNoteHandler creates a new NoteHandler.
func NewNoteHandler(queryService service.QueryService, noteService service.NoteService, logger *logger.Logger) *NoteHandler {
	return &NoteHandler{queryService: queryService, noteService: noteService, logger: logger}
}

// RegisterRoutes registers the note routes to the Echo group.
func (h *NoteHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/companies/:id/notes", h.ListCompanyNotes)
	g.POST("/companies/:id/notes", h.GenerateNote)
}

// ListCompanyNotes godoc
// @Summary List a company's analyst notes
// @Description List all analyst notes for a company ordered by note_version
// @Tags notes
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {array} entity.AnalystNote
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies/{id}/notes [get]
func (h *NoteHandler) ListCompanyNotes(c echo.Context) error {
	companyID := c.Param("id")

	notes, err := h.queryService.ListNotes(c.Request().Context(), companyID)
	if err != nil {
		if errors.Is(err, entity.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "company not found"})
		}
		h.logger.Error("Failed to list notes", logger.ErrorField(err), logger.StringField("company_id", companyID))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to list notes"})
	}

	return c.JSON(http.StatusOK, notes)
}

// GenerateNote godoc
// @Summary Generate a fresh analyst note
// @Description Force note regeneration from the current company snapshot regardless of materiality
// @Tags notes
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 201 {object} entity.AnalystNote
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies/{id}/notes [post]
func (h *NoteHandler) GenerateNote(c echo.Context) error {
	companyID := c.Param("id")

	note, err := h.noteService.Generate(c.Request().Context(), companyID)
	if err != nil {
		if errors.Is(err, entity.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "company not found"})
		}
		h.logger.Error("Failed to generate note", logger.ErrorField(err), logger.StringField("company_id", companyID))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to generate note"})
	}

	return c.JSON(http.StatusCreated, note)
}
