package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils"
)

func GetModuleHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		module, err := box.Module(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}

		// The content type is how clients tell a real module from
		// some other resource a publish log pointed them at.
		c.Response().Header().Set(
			echo.HeaderContentType, publish.MediaTypeModule+"+json",
		)
		return c.JSON(http.StatusOK, module)
	}
}

func ListModuleStepsHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		steps, err := box.ModuleSteps(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, resources.List[publish.Step]{
			Items: steps, Count: len(steps),
		})
	}
}

type stepValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func ExecuteModuleStepHandler(box *sandbox.Sandbox, moduleKey, stepKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := struct {
			Inputs []stepValue `json:"inputs"`
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

		inputs := map[string]any{}
		for _, in := range body.Inputs {
			inputs[in.Name] = in.Value
		}

		outputs, err := box.ExecuteStep(c.Param(moduleKey), c.Param(stepKey), inputs)
		if err != nil {
			return asAPIError(err)
		}

		names := utils.Sorted(
			utils.KeysOf(outputs), func(a, b string) bool { return a < b },
		)
		return c.JSON(http.StatusOK, struct {
			Outputs []stepValue `json:"outputs"`
		}{
			Outputs: utils.Map(names, func(name string) stepValue {
				return stepValue{Name: name, Value: outputs[name]}
			}),
		})
	}
}

func DeleteModuleHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !box.DropModule(c.Param(paramKey)) {
			return apierr.NotFound()
		}
		return c.NoContent(http.StatusNoContent)
	}
}
