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

// CompanyHandler handles HTTP requests for company snapshots.
type CompanyHandler struct {
	queryService service.QueryService
	logger       *logger.Logger
}

// NewCompanyHandler creates a new CompanyHandler.
func NewCompanyHandler(queryService service.QueryService, logger *logger.Logger) *CompanyHandler {
	return &CompanyHandler{queryService: queryService, logger: logger}
}

// RegisterRoutes registers the company routes to the Echo group.
func (h *CompanyHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/companies/:id", h.GetCompany)
}

// GetCompany godoc
// @Summary Get a company snapshot
// @Description Get the current reconciled company record including derived metrics
// @Tags companies
// @Produce  json
// @Param   id  path    string true    "Company ID"
// @Success 200 {object} entity.Company
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	companyID := c.Param("id")

	company, err := h.queryService.GetCompany(c.Request().Context(), companyID)
	if err != nil {
		if errors.Is(err, entity.ErrCompanyNotFound) {
			return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "company not found"})
		}
		h.logger.Error("Failed to get company", logger.ErrorField(err), logger.StringField("company_id", companyID))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get company"})
	}

	return c.JSON(http.StatusOK, company)
}
