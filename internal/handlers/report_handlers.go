package handlers

import (
	"net/http"
	"time"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetDeliverySummary handles GET /reports/summary?from=...&to=... (admin).
// Both dates default to today when omitted.
func (h *ReportHandler) GetDeliverySummary(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	today := time.Now().Format("2006-01-02")
	from := c.DefaultQuery("from", today)
	to := c.DefaultQuery("to", today)

	summary, err := h.reportService.GetDeliverySummary(actor, from, to)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"summary": summary})
}
