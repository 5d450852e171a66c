package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/tradejournal/internal/common"
	"github.com/gin-gonic/gin"
)

// fail writes the status and error code for err. Unexpected errors are
// logged and reported as SERVER_ERROR without detail.
func (s *Server) fail(c *gin.Context, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Code})
	case errors.Is(err, common.ErrorUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "UNAUTHORIZED"})
	case errors.Is(err, common.ErrorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "NOT_FOUND"})
	case errors.Is(err, common.ErrorAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "EMAIL_TAKEN"})
	case errors.Is(err, common.ErrorUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "UNAVAILABLE"})
	default:
		s.logger.Error(c.Request.Context(), "request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "SERVER_ERROR"})
	}
}

// bind decodes the JSON body into dst. Malformed JSON yields INVALID_JSON,
// well-formed JSON of the wrong shape INVALID_BODY.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return common.NewValidationError(common.CodeInvalidJSON, "")
		}
		return common.NewValidationError(common.CodeInvalidBody, "")
	}
	return nil
}
