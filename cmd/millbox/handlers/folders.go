package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/folders"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

func CreateFolderHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		f := folders.Folder{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&f); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithDetail(err.Error()),
				apierr.WithError(err),
			)
		}

		created, err := box.CreateFolder(f)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func GetFolderHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		f, err := box.Folder(c.Param(paramKey), UserOf(c))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, f)
	}
}

func DeleteFolderHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := box.DeleteFolder(c.Param(paramKey)); err != nil {
			return asAPIError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func ListFolderMembersHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		members, err := box.FolderMembers(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, resources.List[folders.Member]{
			Items: members, Count: len(members),
		})
	}
}
