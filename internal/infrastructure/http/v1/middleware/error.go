package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"restostock/internal/core/apperror"
	"restostock/pkg/logger"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler middleware transforms errors into consistent JSON responses.
// Hides internal errors from clients while logging full details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		writeError(c)
	}
}

// writeError renders the last error on c unless a response was already written.
func writeError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}
	err := c.Errors.Last().Err

	if appErr, ok := apperror.AsAppError(err); ok {
		if appErr.Err != nil {
			logger.Error(c.Request.Context(), "request error",
				"code", appErr.Code,
				"cause", appErr.Err,
			)
		}
		c.JSON(appErr.HTTPStatus, ErrorResponse{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		})
		return
	}

	logger.Error(c.Request.Context(), "unhandled error", "error", err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Code:    apperror.CodeInternal,
		Message: "Internal server error",
		Details: map[string]any{"request_id": c.GetString("request_id")},
	})
}
