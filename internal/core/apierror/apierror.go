package apierror

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"garment/internal/ledger"
	"garment/internal/locking"
	custom_error "garment/pkg/errors"
)

// Respond aborts the request with the status matching err. message is used for
// errors that carry no client facing text of their own.
func Respond(c *gin.Context, err error, message string) {
	var (
		validation   *ledger.ValidationError
		notFound     *ledger.NotFoundError
		insufficient *ledger.InsufficientStockError
		unique       *custom_error.UniqueViolationError
		foreignKey   *custom_error.ForeignKeyViolationError
	)

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": validation})
	case errors.As(err, &notFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": notFound.Error(), "details": notFound})
	case errors.Is(err, ledger.ErrRecordNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &insufficient):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "Insufficient stock", "details": insufficient})
	case errors.Is(err, ledger.ErrAlreadyReconciled), errors.Is(err, ledger.ErrNotReserved):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &unique):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": message, "details": unique.Error()})
	case errors.As(err, &foreignKey):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": message, "details": foreignKey.Error()})
	case errors.Is(err, locking.ErrNotObtained), errors.Is(err, context.DeadlineExceeded):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Stock is busy, try again", "details": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}
