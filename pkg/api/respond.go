package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CR-8/clubcore/pkg/apperrors"
	"github.com/CR-8/clubcore/pkg/observability/logger"
)

// ErrorResponse is the wire format for every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// respondError translates an application error to its HTTP status and the
// standard error body. Internal causes are logged server-side and never
// leak to the caller.
func respondError(c *gin.Context, log logger.Logger, err error) {
	status := apperrors.HTTPStatus(err)

	var internal *apperrors.InternalError
	if errors.As(err, &internal) || status >= http.StatusInternalServerError {
		log.WithContext(c.Request.Context()).Error("request failed",
			"method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := ErrorResponse{Error: err.Error()}
	var validation *apperrors.ValidationError
	if errors.As(err, &validation) && validation.Field != "" {
		resp.Details = "field: " + validation.Field
	}
	c.JSON(status, resp)
}
