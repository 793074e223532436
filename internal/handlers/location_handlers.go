package handlers

import (
	"net/http"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// LocationHandler holds the location service.
type LocationHandler struct {
	locationService services.LocationService
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(ls services.LocationService) *LocationHandler {
	return &LocationHandler{locationService: ls}
}

// UpdateLocation handles PUT /riders/me/location (rider heartbeat).
func (h *LocationHandler) UpdateLocation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req services.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.locationService.UpdateLocation(actor, req); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{})
}

// GetRiderLocation handles GET /orders/:id/location.
func (h *LocationHandler) GetRiderLocation(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return
	}

	location, err := h.locationService.GetRiderLocation(actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"location": location})
}
