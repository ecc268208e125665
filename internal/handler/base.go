package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/profmed/crm-api/internal/model"
	apperrors "github.com/profmed/crm-api/pkg/errors"
)

// ContextActor is the gin context key the auth middleware stores the
// authenticated actor under.
const ContextActor = "actor"

// Actor returns the authenticated actor set by the auth middleware
func Actor(c *gin.Context) model.Actor {
	if v, ok := c.Get(ContextActor); ok {
		if actor, ok := v.(model.Actor); ok {
			return actor
		}
	}
	return model.Actor{}
}

// RespondError writes a service error with its mapped status. Conflict
// errors carry their kind and structured details so clients can branch
// without parsing message text.
func RespondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		body := gin.H{
			"status":  "error",
			"message": appErr.Message,
		}
		if appErr.Kind != "" {
			body["kind"] = appErr.Kind
		}
		if len(appErr.Details) > 0 {
			body["details"] = appErr.Details
		}
		c.JSON(appErr.StatusCode(), body)
		return
	}
	c.JSON(http.StatusInternalServerError, NewErrorResponse(err.Error()))
}
