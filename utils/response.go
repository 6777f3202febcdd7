package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response. The page surfaces are
// HTML; this is used by the machine endpoints such as the health check.
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}
