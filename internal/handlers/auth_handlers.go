package handlers

import (
	"net/http"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the auth service.
type AuthHandler struct {
	authService services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(as services.AuthService) *AuthHandler {
	return &AuthHandler{authService: as}
}

// RegisterUser handles POST /auth/register.
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	user, err := h.authService.Register(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusCreated, gin.H{"user": user})
}

// LoginUser handles POST /auth/login.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	auth, err := h.authService.Login(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"token":      auth.Token,
		"expires_at": auth.ExpiresAt,
		"user":       auth.User,
	})
}

// RefreshToken handles POST /auth/refresh-token for an authenticated user.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	auth, err := h.authService.RefreshToken(actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{
		"token":      auth.Token,
		"expires_at": auth.ExpiresAt,
		"user":       auth.User,
	})
}

// GetCurrentUser handles GET /auth/me.
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	user, err := h.authService.GetUserProfile(actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"user": user})
}

// GetUsers handles GET /users (admin only, optional ?role= filter).
func (h *AuthHandler) GetUsers(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	var role *string
	if r := c.Query("role"); r != "" {
		role = &r
	}

	users, err := h.authService.GetUsers(actor, role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondWithSuccess(c, http.StatusOK, gin.H{"users": users})
}
