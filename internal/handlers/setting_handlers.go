package handlers

import (
	"net/http"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingHandler holds the settings service.
type SettingHandler struct {
	settingsService services.SettingsService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingsService) *SettingHandler {
	return &SettingHandler{settingsService: ss}
}

// GetPricing handles GET /settings/pricing (admin).
func (h *SettingHandler) GetPricing(c *gin.Context) {
	pricing, err := h.settingsService.GetPricingSettings()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"pricing": pricing})
}

// UpdatePricing handles PUT /settings/pricing (admin).
func (h *SettingHandler) UpdatePricing(c *gin.Context) {
	var req services.UpdatePricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	pricing, err := h.settingsService.UpdatePricingSettings(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"pricing": pricing})
}
