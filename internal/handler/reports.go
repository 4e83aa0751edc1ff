package handler

import (
	"net/http"

	"proptrust/internal/apierror"
	"proptrust/internal/infra"
	"proptrust/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ReportsHandler struct {
	svc            service.TrustService
	pdfStoragePath string
}

func NewReportsHandler(svc service.TrustService, pdfStoragePath string) *ReportsHandler {
	return &ReportsHandler{svc: svc, pdfStoragePath: pdfStoragePath}
}

// Get godoc
// @Summary Download an account statement
// @Description Renders the requested document from a consistent account snapshot.
// @Tags reports
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Trust account ID"
// @Param reportType path string true "buyer-statement | seller-settlement | trust-reconciliation | tax-zimra | audit-log"
// @Success 200 {file} file
// @Failure 400 {object} apierror.APIError
// @Failure 404 {object} apierror.APIError
// @Router /v1/trust-accounts/{id}/reports/{reportType} [get]
func (h *ReportsHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid id"))
		return
	}
	reportType := c.Param("reportType")
	if !infra.ValidReportType(reportType) {
		c.JSON(http.StatusBadRequest, apierror.New("unknown report type"))
		return
	}

	full, err := h.svc.Full(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	path, err := infra.GenerateReportPDF(full, reportType, h.pdfStoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("failed to generate report"))
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+reportType+".pdf")
	c.File(path)
}
