package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/made-ai/made/pkg/apierrors"
	"github.com/made-ai/made/pkg/masking"
)

var redactor = masking.New()

// writeError maps a domain error to an HTTP status per §7's error
// taxonomy and writes it as the response body, keeping the mapping
// indirection at the handler boundary so callers never see raw errors.
func writeError(c *gin.Context, err error) {
	var fieldErr *apierrors.FieldError
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": fieldErr.Error()})
	case errors.Is(err, apierrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrUnsupportedType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrAttachmentTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrAttachmentExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrNoAPIKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apierrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, apierrors.ErrForbidden):
		// §7: prefer 404 over 403 to avoid existence leaks, so this
		// branch exists only for completeness; store methods already
		// return ErrNotFound on ownership mismatch.
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		slog.Error("api: unexpected error", "error", redactor.Redact(err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
