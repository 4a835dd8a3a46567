// Package handlers exposes the millbox sandbox over the platform's
// HTTP surface, one handler per endpoint the Modelmill client calls.
package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
)

// asAPIError maps sandbox errors onto platform error responses.
func asAPIError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, sandbox.ErrNotFound):
		return apierr.NotFound()
	case errors.Is(err, sandbox.ErrConflict):
		return apierr.Conflict(err.Error(), apierr.WithError(err))
	default:
		return apierr.BadRequest(err.Error(), err)
	}
}
