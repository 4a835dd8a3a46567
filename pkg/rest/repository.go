package rest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils"
)

// Repository is the client of the model repository service.
type Repository interface {
	// ListRepositories lists the model stores.
	//
	// A permission-denied response becomes an *AuthorizationError.
	ListRepositories(ctx context.Context) ([]repositories.Repository, error)

	// DefaultRepository finds the platform's default model store.
	//
	// When none is marked default, the error wraps ErrNotFound.
	DefaultRepository(ctx context.Context) (*repositories.Repository, error)

	// GetRepository finds a model store by name or id.
	//
	// Absence wraps ErrNotFound.
	GetRepository(ctx context.Context, nameOrID string) (*repositories.Repository, error)

	// GetProject finds a project by name or id. Absence wraps ErrNotFound.
	GetProject(ctx context.Context, nameOrID string) (*projects.Project, error)

	// CreateProject registers a new project.
	CreateProject(ctx context.Context, p projects.Project) (*projects.Project, error)

	// UpdateProject stores p over the project with the same id.
	UpdateProject(ctx context.Context, p projects.Project) (*projects.Project, error)

	// ListModels lists registered models. A non-empty projectID
	// narrows the listing to that project.
	ListModels(ctx context.Context, projectID string) ([]models.Model, error)

	// GetModel finds a model by name or id. Absence wraps ErrNotFound.
	GetModel(ctx context.Context, nameOrID string) (*models.Model, error)

	// CreateModel registers a new model record.
	CreateModel(ctx context.Context, m models.Model) (*models.Model, error)

	// CreateModelVersion starts a new version of an existing model.
	CreateModelVersion(ctx context.Context, modelID string) (*models.Model, error)

	// DeleteModelContents drops every file attached to the model.
	DeleteModelContents(ctx context.Context, modelID string) error

	// AddModelContent attaches one file to the model.
	AddModelContent(
		ctx context.Context, modelID string,
		name string, content io.Reader, role string,
	) (*models.Content, error)

	// ListModelContents lists the files attached to the model.
	ListModelContents(ctx context.Context, modelID string) ([]models.Content, error)

	// ImportModelArchive imports a deployable model archive as a new
	// model under the project.
	ImportModelArchive(
		ctx context.Context, name string, projectID string, archive io.Reader,
	) (*models.Model, error)
}

type repositoryClient struct {
	session *Session
}

// NewRepository builds the model repository client on a session.
func NewRepository(s *Session) Repository {
	return &repositoryClient{session: s}
}

func (c *repositoryClient) ListRepositories(ctx context.Context) ([]repositories.Repository, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.session.URL("modelRepository/repositories"), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return nil, &AuthorizationError{
			Endpoint: "/modelRepository/repositories",
			Message: "the user account does not have read permission for " +
				"/modelRepository/repositories. Ask your Modelmill administrator to grant it.",
		}
	}

	repos := resources.List[repositories.Repository]{}
	if err := unmarshalJsonResponse(resp, &repos, MessageFor{
		Status4xx: "cannot list model repositories",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return repos.Items, nil
}

func (c *repositoryClient) DefaultRepository(ctx context.Context) (*repositories.Repository, error) {
	repos, err := c.ListRepositories(ctx)
	if err != nil {
		return nil, err
	}

	found, ok := utils.First(repos, func(r repositories.Repository) bool { return r.Default })
	if !ok {
		return nil, fmt.Errorf("%w: default model repository", ErrNotFound)
	}
	return &found, nil
}

func (c *repositoryClient) GetRepository(ctx context.Context, nameOrID string) (*repositories.Repository, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("modelRepository/repositories", nameOrID), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusForbidden:
		return nil, &AuthorizationError{
			Endpoint: "/modelRepository/repositories",
			Message: "the user account does not have read permission for " +
				"/modelRepository/repositories. Ask your Modelmill administrator to grant it.",
		}
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: model repository %q", ErrNotFound, nameOrID)
	}

	repo := repositories.Repository{}
	if err := unmarshalJsonResponse(resp, &repo, MessageFor{
		Status4xx: "cannot read model repository",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &repo, nil
}

func (c *repositoryClient) GetProject(ctx context.Context, nameOrID string) (*projects.Project, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("modelRepository/projects", nameOrID), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: project %q", ErrNotFound, nameOrID)
	}

	project := projects.Project{}
	if err := unmarshalJsonResponse(resp, &project, MessageFor{
		Status4xx: "cannot read project",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *repositoryClient) CreateProject(ctx context.Context, p projects.Project) (*projects.Project, error) {
	body, err := marshalJSONBody(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("modelRepository/projects"), body,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	created := projects.Project{}
	if err := unmarshalJsonResponse(resp, &created, MessageFor{
		Status4xx: "cannot create project",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *repositoryClient) UpdateProject(ctx context.Context, p projects.Project) (*projects.Project, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("project to update has no id")
	}

	body, err := marshalJSONBody(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut,
		c.session.URL("modelRepository/projects", p.ID), body,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	updated := projects.Project{}
	if err := unmarshalJsonResponse(resp, &updated, MessageFor{
		Status4xx: "cannot update project",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *repositoryClient) ListModels(ctx context.Context, projectID string) ([]models.Model, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.session.URL("modelRepository/models"), nil,
	)
	if err != nil {
		return nil, err
	}
	if projectID != "" {
		q := req.URL.Query()
		q.Set("projectId", projectID)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	found := resources.List[models.Model]{}
	if err := unmarshalJsonResponse(resp, &found, MessageFor{
		Status4xx: "cannot list models",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return found.Items, nil
}

func (c *repositoryClient) GetModel(ctx context.Context, nameOrID string) (*models.Model, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("modelRepository/models", nameOrID), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: model %q", ErrNotFound, nameOrID)
	}

	model := models.Model{}
	if err := unmarshalJsonResponse(resp, &model, MessageFor{
		Status4xx: "cannot read model",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &model, nil
}

func (c *repositoryClient) CreateModel(ctx context.Context, m models.Model) (*models.Model, error) {
	body, err := marshalJSONBody(m)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("modelRepository/models"), body,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	created := models.Model{}
	if err := unmarshalJsonResponse(resp, &created, MessageFor{
		Status4xx: "cannot create model",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *repositoryClient) CreateModelVersion(ctx context.Context, modelID string) (*models.Model, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.session.URL("modelRepository/models", modelID, "versions"), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: model %q", ErrNotFound, modelID)
	}

	model := models.Model{}
	if err := unmarshalJsonResponse(resp, &model, MessageFor{
		Status4xx: "cannot create model version",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &model, nil
}

func (c *repositoryClient) DeleteModelContents(ctx context.Context, modelID string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete,
		c.session.URL("modelRepository/models", modelID, "contents"), nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalResponseDiscardingPayload(resp, MessageFor{
		Status4xx: "cannot delete model contents",
		Status5xx: "model repository service failed",
	})
}

func (c *repositoryClient) AddModelContent(
	ctx context.Context, modelID string,
	name string, content io.Reader, role string,
) (*models.Content, error) {
	body := new(bytes.Buffer)
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("files", name)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(fw, content); err != nil {
		return nil, err
	}
	if role != "" {
		if err := mw.WriteField("role", role); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.session.URL("modelRepository/models", modelID, "contents"), body,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	created := models.Content{}
	if err := unmarshalJsonResponse(resp, &created, MessageFor{
		Status4xx: "cannot attach file to model",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *repositoryClient) ListModelContents(ctx context.Context, modelID string) ([]models.Content, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("modelRepository/models", modelID, "contents"), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	contents := resources.List[models.Content]{}
	if err := unmarshalJsonResponse(resp, &contents, MessageFor{
		Status4xx: "cannot list model contents",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return contents.Items, nil
}

func (c *repositoryClient) ImportModelArchive(
	ctx context.Context, name string, projectID string, archive io.Reader,
) (*models.Model, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("modelRepository/imports"), archive,
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/zip")
	q := req.URL.Query()
	q.Set("name", name)
	q.Set("projectId", projectID)
	req.URL.RawQuery = q.Encode()

	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	imported := models.Model{}
	if err := unmarshalJsonResponse(resp, &imported, MessageFor{
		Status4xx: "cannot import model archive",
		Status5xx: "model repository service failed",
	}); err != nil {
		return nil, err
	}
	return &imported, nil
}
