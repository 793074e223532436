package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"ninthwaka_backend/internal/services"
	"ninthwaka_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// actorFromContext rebuilds the acting user from the claims AuthMiddleware
// stored on the context.
func actorFromContext(c *gin.Context) (services.Actor, bool) {
	userID, idOK := c.Get("userID")
	userRole, roleOK := c.Get("userRole")
	if !idOK || !roleOK {
		utils.RespondWithError(c, http.StatusUnauthorized, "Authentication required")
		return services.Actor{}, false
	}
	id, idCast := userID.(int64)
	role, roleCast := userRole.(string)
	if !idCast || !roleCast {
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid authentication context")
		return services.Actor{}, false
	}
	return services.Actor{UserID: id, Role: role}, true
}

// pathID parses the :id (or named) path parameter as int64.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := utils.StrToInt64(c.Param(name))
	if err != nil || id <= 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+name+" format")
		return 0, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter, falling back to def.
func queryInt(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// respondServiceError maps the service error taxonomy onto HTTP statuses and
// sends the standard error envelope. Unknown errors become opaque 500s so
// internal details never leak to clients.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrOTPNotIssued),
		errors.Is(err, services.ErrOTPExpired),
		errors.Is(err, services.ErrInvalidOTPCode):
		utils.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAuthorization),
		errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.RespondWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrPayoutNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrLocationUnavailable):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrOrderConflict),
		errors.Is(err, services.ErrPayoutAlreadyPaid),
		errors.Is(err, services.ErrChatNotAvailable),
		errors.Is(err, services.ErrUsernameTaken):
		utils.RespondWithError(c, http.StatusConflict, err.Error())
	default:
		utils.LogError(err, "unhandled service error")
		utils.RespondWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
