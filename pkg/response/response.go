package response

import (
	"errors"
	"net/http"

	"yamdb/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	body := ErrorBody{Error: err.Error(), Fields: apperror.FieldsOf(err)}

	var appErr *apperror.AppError
	if code >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", code).
			Msg("request failed")
		if !errors.As(err, &appErr) {
			body.Error = apperror.ErrInternal.Error()
		}
	}

	c.AbortWithStatusJSON(code, body)
}
