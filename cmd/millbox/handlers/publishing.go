package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

func ListDestinationsHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		dests := box.Destinations()
		return c.JSON(http.StatusOK, resources.List[publish.Destination]{
			Items: dests, Count: len(dests),
		})
	}
}

func GetDestinationHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		dest, err := box.Destination(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, dest)
	}
}

func PublishCodeHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := struct {
			Code            string `json:"code"`
			DestinationName string `json:"destinationName"`
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

		job, err := box.SubmitCodePublish(body.Code, body.DestinationName)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func GetPublishJobHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		job, err := box.PublishJob(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, job)
	}
}
