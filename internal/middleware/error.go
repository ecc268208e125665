package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/profmed/crm-api/pkg/errors"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Kind    string                 `json:"kind,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
	TraceID string                 `json:"trace_id,omitempty"`
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		traceID := c.GetString(ContextRequestID)

		for _, e := range c.Errors {
			log.Error().
				Err(e.Err).
				Str("trace_id", traceID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Str("client_ip", c.ClientIP()).
				Msg("Request error")
		}

		lastErr := c.Errors.Last()
		resp := ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: lastErr.Error(),
			TraceID: traceID,
		}

		if appErr, ok := apperrors.AsAppError(lastErr.Err); ok {
			resp.Code = appErr.StatusCode()
			resp.Message = appErr.Message
			resp.Kind = appErr.Kind
			resp.Details = appErr.Details
		} else if err, ok := lastErr.Err.(interface{ StatusCode() int }); ok {
			resp.Code = err.StatusCode()
		}

		c.JSON(resp.Code, resp)
	}
}
