package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelmill/modelmill/pkg/api/types/performance"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

// PublishSettings tunes how a registered model is published.
type PublishSettings struct {
	// Name requests a module name. Left empty, the platform derives
	// one from the model name.
	Name string

	// Force replaces a module already published under the same name.
	Force bool

	// ReloadTable reloads the destination's model table after
	// publishing. Only meaningful for compute-grid destinations.
	ReloadTable bool
}

// Management is the client of the model management service.
type Management interface {
	// PublishModel publishes a registered model to a destination and
	// returns the publish job started for it.
	PublishModel(
		ctx context.Context, modelID string, destination string, settings PublishSettings,
	) (*publish.Job, error)

	// ListPerformanceDefinitions lists every performance definition.
	ListPerformanceDefinitions(ctx context.Context) ([]performance.Definition, error)

	// ExecutePerformanceDefinition runs a performance definition over
	// the data currently on the grid. The run is synchronous.
	ExecutePerformanceDefinition(ctx context.Context, definitionID string) error
}

type managementClient struct {
	session *Session
}

// NewManagement builds the model management client on a session.
func NewManagement(s *Session) Management {
	return &managementClient{session: s}
}

func (c *managementClient) PublishModel(
	ctx context.Context, modelID string, destination string, settings PublishSettings,
) (*publish.Job, error) {
	body, err := marshalJSONBody(struct {
		ModelID         string `json:"modelId"`
		DestinationName string `json:"destinationName"`
		PublishName     string `json:"publishName,omitempty"`
		Force           bool   `json:"force"`
		ReloadTable     bool   `json:"reloadModelTable"`
	}{
		ModelID:         modelID,
		DestinationName: destination,
		PublishName:     settings.Name,
		Force:           settings.Force,
		ReloadTable:     settings.ReloadTable,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("modelManagement/publish"), body,
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

	job := publish.Job{}
	if err := unmarshalJsonResponse(resp, &job, MessageFor{
		Status4xx: "cannot publish model",
		Status5xx: "model management service failed",
	}); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *managementClient) ListPerformanceDefinitions(ctx context.Context) ([]performance.Definition, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("modelManagement/performanceTasks"), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	defs := resources.List[performance.Definition]{}
	if err := unmarshalJsonResponse(resp, &defs, MessageFor{
		Status4xx: "cannot list performance definitions",
		Status5xx: "model management service failed",
	}); err != nil {
		return nil, err
	}
	return defs.Items, nil
}

func (c *managementClient) ExecutePerformanceDefinition(ctx context.Context, definitionID string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.session.URL("modelManagement/performanceTasks", definitionID, "runs"), nil,
	)
	if err != nil {
		return err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: performance definition %q", ErrNotFound, definitionID)
	}

	return unmarshalResponseDiscardingPayload(resp, MessageFor{
		Status4xx: "cannot run performance definition",
		Status5xx: "model management service failed",
	})
}
