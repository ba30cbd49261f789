package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes shared by every handler.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidPayload     = "INVALID_PAYLOAD"
	CodeInvalidDates       = "INVALID_DATES"
	CodeNoAvailability     = "NO_AVAILABILITY"
	CodeAlreadyStarted     = "RESERVATION_ALREADY_STARTED"
	CodeStockBelowReserved = "STOCK_BELOW_RESERVED"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeInternal           = "INTERNAL_ERROR"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// Abort writes the error envelope and stops the middleware chain.
func Abort(c *gin.Context, statusCode int, code string, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}
