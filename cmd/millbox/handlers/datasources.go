package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
)

// ResolveTableHandler serves the data-sources lookup of a grid table.
// The source path segment is "grid~{server}~{library}".
func ResolveTableHandler(box *sandbox.Sandbox, sourceKey, tableKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		source := c.Param(sourceKey)
		parts := strings.Split(source, "~")
		if len(parts) != 3 || parts[0] != "grid" {
			return apierr.BadRequest(
				fmt.Sprintf("source %q is not of the form grid~server~library", source),
				nil,
			)
		}

		ref, err := box.ResolveTable(parts[1], parts[2], c.Param(tableKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, ref)
	}
}
