package rest

import (
	"context"
	"net/http"

	"github.com/modelmill/modelmill/pkg/api/types/pipelines"
)

// Pipelines is the client of the automated-pipeline service.
//
// The service is an optional platform component, so its availability
// is probed before use.
type Pipelines interface {
	// Available answers whether the service is installed and enabled.
	Available(ctx context.Context) (bool, error)

	// CreateProject registers an automation project. The model search
	// it starts runs asynchronously; the project is returned at once.
	CreateProject(ctx context.Context, p pipelines.AutomationProject) (*pipelines.AutomationProject, error)
}

type pipelinesClient struct {
	session *Session
}

// NewPipelines builds the automated-pipeline client on a session.
func NewPipelines(s *Session) Pipelines {
	return &pipelinesClient{session: s}
}

func (c *pipelinesClient) Available(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.session.URL("pipelineAutomation"), nil,
	)
	if err != nil {
		return false, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	// Deployments without the service answer 404 or 503 here. Any
	// other non-2xx counts as unavailable too, not as a failure.
	if err := unmarshalResponseDiscardingPayload(resp, nil); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *pipelinesClient) CreateProject(
	ctx context.Context, p pipelines.AutomationProject,
) (*pipelines.AutomationProject, error) {
	body, err := marshalJSONBody(p)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("pipelineAutomation/projects"), body,
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

	created := pipelines.AutomationProject{}
	if err := unmarshalJsonResponse(resp, &created, MessageFor{
		Status4xx: "cannot create automation project",
		Status5xx: "automated-pipeline service failed",
	}); err != nil {
		return nil, err
	}
	return &created, nil
}
