package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
)

// Publisher is the client of the model publishing service.
type Publisher interface {
	// ListDestinations lists the publishing destinations.
	ListDestinations(ctx context.Context) ([]publish.Destination, error)

	// GetDestination finds a destination by name. Absence wraps ErrNotFound.
	GetDestination(ctx context.Context, name string) (*publish.Destination, error)

	// PublishCode submits inline score code to a destination and
	// returns the publish job started for it.
	PublishCode(ctx context.Context, code string, destination string) (*publish.Job, error)

	// GetJob reads the current state of a publish job.
	GetJob(ctx context.Context, jobID string) (*publish.Job, error)
}

type publisherClient struct {
	session *Session
}

// NewPublisher builds the publishing service client on a session.
func NewPublisher(s *Session) Publisher {
	return &publisherClient{session: s}
}

func (c *publisherClient) ListDestinations(ctx context.Context) ([]publish.Destination, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.session.URL("modelPublish/destinations"), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	dests := resources.List[publish.Destination]{}
	if err := unmarshalJsonResponse(resp, &dests, MessageFor{
		Status4xx: "cannot list publishing destinations",
		Status5xx: "publishing service failed",
	}); err != nil {
		return nil, err
	}
	return dests.Items, nil
}

func (c *publisherClient) GetDestination(ctx context.Context, name string) (*publish.Destination, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("modelPublish/destinations", name), nil,
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
		return nil, fmt.Errorf("%w: publishing destination %q", ErrNotFound, name)
	}

	dest := publish.Destination{}
	if err := unmarshalJsonResponse(resp, &dest, MessageFor{
		Status4xx: "cannot read publishing destination",
		Status5xx: "publishing service failed",
	}); err != nil {
		return nil, err
	}
	return &dest, nil
}

func (c *publisherClient) PublishCode(ctx context.Context, code string, destination string) (*publish.Job, error) {
	body, err := marshalJSONBody(struct {
		Code            string `json:"code"`
		DestinationName string `json:"destinationName"`
	}{Code: code, DestinationName: destination})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.session.URL("modelPublish/models"), body,
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
		Status4xx: "cannot publish score code",
		Status5xx: "publishing service failed",
	}); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *publisherClient) GetJob(ctx context.Context, jobID string) (*publish.Job, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, c.session.URL("modelPublish/jobs", jobID), nil,
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
		return nil, fmt.Errorf("%w: publish job %q", ErrNotFound, jobID)
	}

	job := publish.Job{}
	if err := unmarshalJsonResponse(resp, &job, MessageFor{
		Status4xx: "cannot read publish job",
		Status5xx: "publishing service failed",
	}); err != nil {
		return nil, err
	}
	return &job, nil
}
