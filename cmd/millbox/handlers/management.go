package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/performance"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

func PublishModelHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := struct {
			ModelID         string `json:"modelId"`
			DestinationName string `json:"destinationName"`
			PublishName     string `json:"publishName"`
			Force           bool   `json:"force"`
			ReloadTable     bool   `json:"reloadModelTable"`
		}{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithDetail(err.Error()),
				apierr.WithError(err),
			)
		}

		job, err := box.SubmitModelPublish(
			body.ModelID, body.DestinationName, body.PublishName,
			body.Force, body.ReloadTable,
		)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func ListPerformanceDefinitionsHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		defs := box.Definitions()
		return c.JSON(http.StatusOK, resources.List[performance.Definition]{
			Items: defs, Count: len(defs),
		})
	}
}

func RunPerformanceDefinitionHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := box.RunDefinition(c.Param(paramKey)); err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, map[string]string{"state": "completed"})
	}
}
