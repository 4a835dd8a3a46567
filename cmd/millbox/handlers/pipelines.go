package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/pipelines"
)

// ProbeAutomationHandler answers the availability probe. A sandbox
// without automation responds like a deployment missing the service.
func ProbeAutomationHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !box.AutomationEnabled() {
			return apierr.NotFound()
		}
		return c.JSON(http.StatusOK, map[string]string{"service": "pipelineAutomation"})
	}
}

func CreateAutomationProjectHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !box.AutomationEnabled() {
			return apierr.NotFound()
		}

		p := pipelines.AutomationProject{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&p); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithDetail(err.Error()),
				apierr.WithError(err),
			)
		}

		created, err := box.CreateAutomationProject(p)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}
