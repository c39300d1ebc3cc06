package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"techstore/internal/repository"
	"techstore/internal/service"
)

// errorJSON maps service and repository errors onto HTTP statuses. Anything
// unclassified surfaces as a generic 500 with the underlying message.
func errorJSON(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrCartEmpty),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, repository.ErrInsufficientStock):
		return c.JSON(400, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionExpired),
		errors.Is(err, service.ErrAccountDisabled):
		return c.JSON(401, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(404, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrCategoryInUse),
		errors.Is(err, repository.ErrStatusConflict):
		return c.JSON(409, map[string]string{"error": err.Error()})
	default:
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
}

// pagedJSON is the envelope for paginated list responses.
func pagedJSON(c echo.Context, items interface{}, total int64, page repository.Page) error {
	return c.JSON(200, map[string]interface{}{
		"items":     items,
		"total":     total,
		"page":      page.Number,
		"page_size": page.Size,
	})
}
