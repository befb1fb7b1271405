package response

import (
	"github.com/gin-gonic/gin"
)

// The API contract is a flat JSON envelope: a boolean "status", a
// human-readable "message", and operation-specific payload keys (token,
// user, product, products) merged at the top level. Failures carry
// status=false plus an optional "errors" field->message map.

// OK writes a success envelope with the given payload fields merged in.
func OK(c *gin.Context, code int, message string, fields gin.H) {
	body := gin.H{"status": true, "message": message}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(code, body)
}

// Fail writes a failure envelope. details, when non-nil, is rendered under
// "errors" (field-level validation detail).
func Fail(c *gin.Context, code int, message string, details any) {
	body := gin.H{"status": false, "message": message}
	if details != nil {
		body["errors"] = details
	}
	c.JSON(code, body)
}

// AbortFail is Fail plus aborting the middleware chain; used by auth and
// rate-limit middleware.
func AbortFail(c *gin.Context, code int, message string, details any) {
	body := gin.H{"status": false, "message": message}
	if details != nil {
		body["errors"] = details
	}
	c.AbortWithStatusJSON(code, body)
}
