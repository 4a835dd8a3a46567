package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

func ListRepositoriesHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		repos := box.Repositories()
		return c.JSON(http.StatusOK, resources.List[repositories.Repository]{
			Items: repos, Count: len(repos),
		})
	}
}

func GetRepositoryHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		repo, err := box.Repository(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, repo)
	}
}

func CreateProjectHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := projects.Project{}
		if err := json.NewDecoder(c.Request().Body).Decode(&p); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithDetail(err.Error()),
				apierr.WithError(err),
			)
		}

		created, err := box.CreateProject(p)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func GetProjectHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := box.Project(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, p)
	}
}

func UpdateProjectHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := projects.Project{}
		if err := json.NewDecoder(c.Request().Body).Decode(&p); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithDetail(err.Error()),
				apierr.WithError(err),
			)
		}
		p.ID = c.Param(paramKey)

		updated, err := box.UpdateProject(p)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func CreateModelHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		m := models.Model{}
		decoder := json.NewDecoder(c.Request().Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&m); err != nil {
			return apierr.NewErrorMessage(
				http.StatusBadRequest,
				"format error",
				apierr.WithDetail(err.Error()),
				apierr.WithError(err),
			)
		}

		created, err := box.CreateModel(m)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func ListModelsHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		found, err := box.Models(c.QueryParam("projectId"))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, resources.List[models.Model]{
			Items: found, Count: len(found),
		})
	}
}

func GetModelHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		m, err := box.Model(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, m)
	}
}

func CreateModelVersionHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		m, err := box.NewModelVersion(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, m)
	}
}

func AddModelContentHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		file, err := c.FormFile("files")
		if err != nil {
			return apierr.BadRequest(`a multipart file field "files" is required`, err)
		}
		f, err := file.Open()
		if err != nil {
			return apierr.InternalServerError(err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		content, err := box.AddContent(
			c.Param(paramKey), file.Filename, c.FormValue("role"), data,
		)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, content)
	}
}

func ListModelContentsHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		contents, err := box.Contents(c.Param(paramKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, resources.List[models.Content]{
			Items: contents, Count: len(contents),
		})
	}
}

func DeleteModelContentsHandler(box *sandbox.Sandbox, paramKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := box.DropContents(c.Param(paramKey)); err != nil {
			return asAPIError(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}

func ImportModelHandler(box *sandbox.Sandbox) echo.HandlerFunc {
	return func(c echo.Context) error {
		name := c.QueryParam("name")
		projectID := c.QueryParam("projectId")
		if projectID == "" {
			return apierr.BadRequest(`the query parameter "projectId" is required`, nil)
		}

		archive, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		imported, err := box.ImportArchive(name, projectID, archive)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, imported)
	}
}
