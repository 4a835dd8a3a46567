package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils"
)

// MAS is the client of the micro-analytic scoring service.
type MAS interface {
	// GetModule reads a module by name. Absence wraps ErrNotFound.
	GetModule(ctx context.Context, name string) (*publish.Module, error)

	// GetModuleByURL reads a module resource from an URL a publish log
	// names. It also returns the response's content type, which tells
	// whether the resource really is a micro-analytic module.
	GetModuleByURL(ctx context.Context, moduleURL string) (*publish.Module, string, error)

	// ListSteps lists a module's callable steps.
	ListSteps(ctx context.Context, moduleName string) ([]publish.Step, error)

	// ExecuteStep calls one step with named inputs and returns its
	// named outputs.
	ExecuteStep(
		ctx context.Context, moduleName string, stepID string, inputs map[string]any,
	) (map[string]any, error)

	// DeleteModule removes a published module. Deleting an absent
	// module is not an error.
	DeleteModule(ctx context.Context, name string) error
}

type masClient struct {
	session *Session
}

// NewMAS builds the micro-analytic service client on a session.
func NewMAS(s *Session) MAS {
	return &masClient{session: s}
}

func (c *masClient) GetModule(ctx context.Context, name string) (*publish.Module, error) {
	module, _, err := c.GetModuleByURL(ctx, c.session.URL("microAnalyticScore/modules", name))
	if err != nil {
		return nil, err
	}
	return module, nil
}

func (c *masClient) GetModuleByURL(ctx context.Context, moduleURL string) (*publish.Module, string, error) {
	if !strings.HasPrefix(moduleURL, "http://") && !strings.HasPrefix(moduleURL, "https://") {
		moduleURL = c.session.URL(moduleURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, moduleURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", fmt.Errorf("%w: module at %s", ErrNotFound, moduleURL)
	}

	module := publish.Module{}
	if err := unmarshalJsonResponse(resp, &module, MessageFor{
		Status4xx: "cannot read module",
		Status5xx: "micro-analytic service failed",
	}); err != nil {
		return nil, "", err
	}
	return &module, resp.Header.Get("Content-Type"), nil
}

func (c *masClient) ListSteps(ctx context.Context, moduleName string) ([]publish.Step, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("microAnalyticScore/modules", moduleName, "steps"), nil,
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
		return nil, fmt.Errorf("%w: module %q", ErrNotFound, moduleName)
	}

	steps := resources.List[publish.Step]{}
	if err := unmarshalJsonResponse(resp, &steps, MessageFor{
		Status4xx: "cannot list module steps",
		Status5xx: "micro-analytic service failed",
	}); err != nil {
		return nil, err
	}
	return steps.Items, nil
}

type stepValue struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

func (c *masClient) ExecuteStep(
	ctx context.Context, moduleName string, stepID string, inputs map[string]any,
) (map[string]any, error) {
	body, err := marshalJSONBody(struct {
		Inputs []stepValue `json:"inputs"`
	}{
		Inputs: utils.Map(
			utils.Sorted(utils.KeysOf(inputs), func(a, b string) bool { return a < b }),
			func(name string) stepValue { return stepValue{Name: name, Value: inputs[name]} },
		),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		c.session.URL("microAnalyticScore/modules", moduleName, "steps", stepID), body,
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

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: step %q of module %q", ErrNotFound, stepID, moduleName)
	}

	result := struct {
		Outputs []stepValue `json:"outputs"`
	}{}
	if err := unmarshalJsonResponse(resp, &result, MessageFor{
		Status4xx: "cannot execute module step",
		Status5xx: "micro-analytic service failed",
	}); err != nil {
		return nil, err
	}

	outputs := map[string]any{}
	for _, o := range result.Outputs {
		outputs[o.Name] = o.Value
	}
	return outputs, nil
}

func (c *masClient) DeleteModule(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodDelete,
		c.session.URL("microAnalyticScore/modules", name), nil,
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
		return nil // already gone
	}

	return unmarshalResponseDiscardingPayload(resp, MessageFor{
		Status4xx: "cannot delete module",
		Status5xx: "micro-analytic service failed",
	})
}
