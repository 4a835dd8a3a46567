package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/scorecode"
	"github.com/modelmill/modelmill/pkg/utils"
	"github.com/modelmill/modelmill/pkg/utils/retry"
)

// PublishResult is what a settled publish yields.
type PublishResult struct {
	// Job is the publish job, settled.
	Job publish.Job

	// Module is the published module, callable, when the destination
	// was the micro-analytic service and the module resolved.
	Module *PublishedModule

	// Link points at the published resource when no callable module
	// could be resolved.
	Link *resources.Link
}

// PublishedModule is a callable handle to a module on the
// micro-analytic service.
type PublishedModule struct {
	Module publish.Module
	Steps  []publish.Step

	mas rest.MAS
}

// StepIDs lists the module's callable steps.
func (m *PublishedModule) StepIDs() []string {
	return utils.Map(m.Steps, func(s publish.Step) string { return s.ID })
}

// Call executes one step of the module with named inputs and returns
// its named outputs.
func (m *PublishedModule) Call(
	ctx context.Context, stepID string, inputs map[string]any,
) (map[string]any, error) {
	if _, ok := utils.First(m.Steps, func(s publish.Step) bool { return s.ID == stepID }); !ok {
		return nil, fmt.Errorf("module %q has no step %q", m.Module.Name, stepID)
	}
	return m.mas.ExecuteStep(ctx, m.Module.Name, stepID, inputs)
}

// PublishError tells that a publish job settled badly, or never
// settled. The platform's job log rides along for diagnosis.
type PublishError struct {
	JobID string
	State string
	Log   string
}

func (e *PublishError) Error() string {
	message := fmt.Sprintf("publishing failed (job %s, state %q)", e.JobID, e.State)
	if e.Log != "" {
		message += "\n" + e.Log
	}
	return message
}

type publishConfig struct {
	code    string
	name    string
	replace bool
	backoff retry.Backoff
}

// PublishOption adjusts how a model is published.
type PublishOption func(*publishConfig) *publishConfig

// WithCode publishes inline score code instead of a registered
// model's. The model argument is then used only for naming and may be
// empty.
func WithCode(code string) PublishOption {
	return func(c *publishConfig) *publishConfig {
		c.code = code
		return c
	}
}

// WithModuleName requests the name the published module gets. Left
// unset, the platform derives one from the model name.
func WithModuleName(name string) PublishOption {
	return func(c *publishConfig) *publishConfig {
		c.name = name
		return c
	}
}

// WithReplace replaces a module already published under the same
// name. When the first attempt fails on a micro-analytic destination,
// the leftover module is deleted and the publish submitted once more.
func WithReplace() PublishOption {
	return func(c *publishConfig) *publishConfig {
		c.replace = true
		return c
	}
}

// WithPublishBackoff paces and bounds the publish-job polling.
// Defaults to rest.AwaitJob's own pacing.
func WithPublishBackoff(b retry.Backoff) PublishOption {
	return func(c *publishConfig) *publishConfig {
		c.backoff = b
		return c
	}
}

// WithMaxPolls bounds the publish-job polling to n polls at the
// default interval.
func WithMaxPolls(n int) PublishOption {
	return WithPublishBackoff(
		retry.MaxAttempts(n, retry.StaticBackoff(rest.DefaultPollInterval)),
	)
}

// Publish sends a registered model (or inline score code) to a
// publishing destination and waits for the publish job to settle.
//
// A completed publish to the micro-analytic service resolves into a
// callable module. Publishing anywhere else yields a link to the
// published resource. A job settling in failure surfaces as a
// *PublishError carrying the platform's job log.
func Publish(
	ctx context.Context, c Clients, model string, destination string,
	opts ...PublishOption,
) (*PublishResult, error) {
	conf := utils.ApplyAll(&publishConfig{}, opts...)

	dest, err := c.Publisher.GetDestination(ctx, destination)
	if err != nil {
		return nil, err
	}

	submit := func() (*publish.Job, error) {
		if conf.code != "" {
			return c.Publisher.PublishCode(ctx, conf.code, destination)
		}
		m, err := c.Repository.GetModel(ctx, model)
		if err != nil {
			return nil, err
		}
		return c.Management.PublishModel(ctx, m.ID, destination, rest.PublishSettings{
			Name:        conf.name,
			Force:       conf.replace,
			ReloadTable: dest.Type == publish.DestinationTypeGrid,
		})
	}

	job, err := submitAndAwait(ctx, c, submit, conf.backoff)
	if err != nil {
		return nil, err
	}

	if job.State == publish.JobStateFailed &&
		conf.replace && dest.Type == publish.DestinationTypeMAS {
		// A leftover module under the same name is the usual cause.
		// Clear it and submit once more.
		if err := c.MAS.DeleteModule(ctx, moduleNameFor(job, conf, model)); err != nil {
			return nil, err
		}
		job, err = submitAndAwait(ctx, c, submit, conf.backoff)
		if err != nil {
			return nil, err
		}
	}

	if job.State != publish.JobStateCompleted {
		return nil, &PublishError{JobID: job.ID, State: job.State, Log: job.Log}
	}

	if dest.Type != publish.DestinationTypeMAS {
		link, ok := resources.SelfLink(job.Links)
		if !ok {
			return nil, fmt.Errorf(
				"publish job %s names no link to the published resource", job.ID,
			)
		}
		return &PublishResult{Job: *job, Link: &link}, nil
	}

	return masResult(ctx, c, job)
}

func submitAndAwait(
	ctx context.Context, c Clients,
	submit func() (*publish.Job, error), backoff retry.Backoff,
) (*publish.Job, error) {
	job, err := submit()
	if err != nil {
		return nil, err
	}

	settled, err := rest.AwaitJob(ctx, c.Publisher, job, backoff)
	if errors.Is(err, rest.ErrJobNotSettled) {
		return nil, &PublishError{
			JobID: settled.ID, State: settled.State, Log: settled.Log,
		}
	}
	if err != nil {
		return nil, err
	}
	return settled, nil
}

// moduleNameFor tells the module name a publish (would have)
// produced: the requested one, the one the job reports, or the one
// derived from the model name, in that order.
func moduleNameFor(job *publish.Job, conf *publishConfig, model string) string {
	if conf.name != "" {
		return conf.name
	}
	if job.PublishName != "" {
		return job.PublishName
	}
	return scorecode.ModuleName(model)
}

// successPrefix decorates the log of a completed publish ahead of its
// payload.
const successPrefix = "SUCCESS==="

// Publish logs name the published module in one of three shapes,
// newest first: a JSON document with links, and two older prose forms.
var (
	moduleHrefPattern = regexp.MustCompile(`rel=module, href=(.*?),`)
	moduleURIPattern  = regexp.MustCompile(`Rel: module URI: (.*?) MediaType`)
)

func parseModuleURL(log string) (string, bool) {
	var details struct {
		Links []resources.Link `json:"links"`
	}
	if err := json.Unmarshal([]byte(log), &details); err == nil {
		if link, ok := resources.FindLink(details.Links, "module"); ok {
			return link.Href, true
		}
	}
	if m := moduleHrefPattern.FindStringSubmatch(log); m != nil {
		return m[1], true
	}
	if m := moduleURIPattern.FindStringSubmatch(log); m != nil {
		return m[1], true
	}
	return "", false
}

// masResult resolves a completed micro-analytic publish into the
// module it produced, located through the job log.
func masResult(ctx context.Context, c Clients, job *publish.Job) (*PublishResult, error) {
	log := strings.TrimPrefix(job.Log, successPrefix)

	moduleURL, ok := parseModuleURL(log)
	if !ok {
		return nil, fmt.Errorf(
			"publish job %s completed, but its log names no module", job.ID,
		)
	}

	module, contentType, err := c.MAS.GetModuleByURL(ctx, moduleURL)
	if err != nil {
		return nil, err
	}

	if !strings.Contains(contentType, publish.MediaTypeModule) {
		// Something answered at the URL, but not a callable module.
		return &PublishResult{
			Job:  *job,
			Link: &resources.Link{Rel: "module", Href: moduleURL},
		}, nil
	}

	steps, err := c.MAS.ListSteps(ctx, module.Name)
	if err != nil {
		return nil, err
	}

	return &PublishResult{
		Job:    *job,
		Module: &PublishedModule{Module: *module, Steps: steps, mas: c.MAS},
	}, nil
}
