package utils

import (
	"github.com/gin-gonic/gin"
)

// RespondWithError sends the standard JSON error envelope:
// {"success": false, "error": "<message>"}.
func RespondWithError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"success": false, "error": message})
	c.Abort()
}

// RespondWithSuccess sends the standard JSON success envelope, merging the
// given payload fields next to "success": true.
func RespondWithSuccess(c *gin.Context, statusCode int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(statusCode, body)
}
