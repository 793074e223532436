package handlers

import (
	"net/http"
	"time"

	"ninthwaka_backend/internal/models"
	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PayoutHandler holds the payout service.
type PayoutHandler struct {
	payoutService services.PayoutService
}

// NewPayoutHandler creates a new PayoutHandler.
func NewPayoutHandler(ps services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: ps}
}

// GeneratePayouts handles POST /payouts/generate (admin settlement run).
func (h *PayoutHandler) GeneratePayouts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	// The body is optional; an empty request settles the current week.
	var req services.GeneratePayoutsRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
			return
		}
	}

	result, err := h.payoutService.GenerateForWeek(actor, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"result": result})
}

// GetPayouts handles GET /payouts with optional filters.
func (h *PayoutHandler) GetPayouts(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var filters models.PayoutFilters
	if riderIDStr := c.Query("rider_id"); riderIDStr != "" {
		riderID, err := utils.StrToInt64(riderIDStr)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid rider_id format")
			return
		}
		filters.RiderID = &riderID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if weekStr := c.Query("week_start"); weekStr != "" {
		week, err := time.ParseInLocation("2006-01-02", weekStr, time.Local)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid week_start format. Use YYYY-MM-DD")
			return
		}
		filters.WeekStart = &week
	}

	payouts, err := h.payoutService.GetPayouts(actor, filters)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"payouts": payouts})
}

// GetPayoutByID handles GET /payouts/:id.
func (h *PayoutHandler) GetPayoutByID(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	payoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payout, err := h.payoutService.GetPayoutByID(actor, payoutID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"payout": payout})
}

// MarkPayoutPaid handles PATCH /payouts/:id/mark-paid (admin).
func (h *PayoutHandler) MarkPayoutPaid(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	payoutID, ok := pathID(c, "id")
	if !ok {
		return
	}

	payout, err := h.payoutService.MarkPaid(actor, payoutID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"payout": payout})
}
