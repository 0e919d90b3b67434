package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"foodorder/internal/domain"
)

// respondErr maps the service error taxonomy onto HTTP in one place. The
// retryable flag tells clients which conflicts are worth re-submitting.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrPreconditionFailed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrIllegalTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retryable": false})
	case errors.Is(err, domain.ErrConflictRetry):
		c.JSON(http.StatusConflict, gin.H{"error": "write conflict, retry", "retryable": true})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "upstream unavailable, retry later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
