package handler

import (
	"errors"
	"net/http"

	"github.com/forkliftia/case-service/internal/errs"
	"github.com/gin-gonic/gin"
)

// writeError maps the error taxonomy onto HTTP status codes. Unmatched
// errors (storage I/O and the like) become a generic 500.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrInvalidStatus), errors.Is(err, errs.ErrEmptyNote):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errs.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "not the case owner or an admin"})
	case errors.Is(err, errs.ErrCaseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
	case errors.Is(err, errs.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "ai service unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
