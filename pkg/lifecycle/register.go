package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/dataset"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/scorecode"
	"github.com/modelmill/modelmill/pkg/utils"
)

// VersionNew asks registration to create a brand-new model record.
const VersionNew = "new"

// Result is what registration yields: the stored model and the
// warnings of a degraded registration.
type Result struct {
	Model    *models.Model
	Warnings []string
}

type registerConfig struct {
	repository     string
	version        string
	files          []File
	force          bool
	recordPackages bool
	packages       PackageProbe
	statistics     Statistics
	data           *dataset.Frame
	train          *dataset.Frame
	valid          *dataset.Frame
	test           *dataset.Frame
}

// RegisterOption adjusts a model registration.
type RegisterOption func(*registerConfig) *registerConfig

// WithRepository registers into the named model store instead of the
// platform default.
func WithRepository(nameOrID string) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.repository = nameOrID
		return c
	}
}

// WithVersion selects the model version to register. VersionNew, the
// default, creates a new model record; anything else adds a new
// version to a model that must already exist under the same name.
func WithVersion(version string) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.version = version
		return c
	}
}

// WithFiles attaches files to the model, after the generated ones, in
// the given order. A caller-supplied file also suppresses generating
// the statistic or inventory file of the same name.
func WithFiles(files ...File) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.files = append(c.files, files...)
		return c
	}
}

// Force creates the project when it does not exist yet. Without it,
// registering against an absent project fails.
func Force() RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.force = true
		return c
	}
}

// RecordPackages records the build's package inventory with the model:
// pinned packages become env_* properties and an environment.txt file.
func RecordPackages() RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.recordPackages = true
		return c
	}
}

// WithPackageProbe overrides where RecordPackages reads the inventory
// from. Defaults to the running binary's build information.
func WithPackageProbe(p PackageProbe) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.packages = p
		return c
	}
}

// WithStatistics computes lift, fit and ROC statistics with st and
// stores them with the model. Takes effect only when at least one
// data split is given.
func WithStatistics(st Statistics) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.statistics = st
		return c
	}
}

// WithExampleData declares example data. Variables are derived from
// it when no data split is given.
func WithExampleData(f *dataset.Frame) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.data = f
		return c
	}
}

// WithTrainData declares the training split.
func WithTrainData(f *dataset.Frame) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.train = f
		return c
	}
}

// WithValidationData declares the validation split.
func WithValidationData(f *dataset.Frame) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.valid = f
		return c
	}
}

// WithTestData declares the test split.
func WithTestData(f *dataset.Frame) RegisterOption {
	return func(c *registerConfig) *registerConfig {
		c.test = f
		return c
	}
}

// Register stores a model artifact in the model repository, under a
// project, with everything the platform needs to serve the model:
// metadata, variables, serialized bytes, score code and auxiliary
// files.
//
// The project must exist unless Force() allows creating it. Nothing
// is created or uploaded before that and the model store are
// resolved.
func Register(
	ctx context.Context, c Clients,
	artifact ModelArtifact, name string, project string,
	opts ...RegisterOption,
) (*Result, error) {
	conf := utils.ApplyAll(
		&registerConfig{version: VersionNew, packages: BuildInfoPackages},
		opts...,
	)

	if artifact == nil {
		return nil, fmt.Errorf("no model artifact to register")
	}
	if name == "" {
		return nil, fmt.Errorf("the model needs a name")
	}

	p, err := c.Repository.GetProject(ctx, project)
	switch {
	case errors.Is(err, rest.ErrNotFound):
		if !conf.force {
			return nil, fmt.Errorf(
				"project %q does not exist; pass Force() to create it", project,
			)
		}
		p = nil
	case err != nil:
		return nil, err
	}

	repo, err := modelRepository(ctx, c, conf.repository)
	if err != nil {
		return nil, err
	}

	switch a := artifact.(type) {
	case StoreTable:
		return registerStore(ctx, c, a, name, project, p, repo)
	case EstimatorModel:
		return registerEstimator(ctx, c, a.Estimator, name, project, p, repo, conf)
	case DescriptorModel:
		descriptor := a.Model
		descriptor.Name = name
		return registerDescriptor(ctx, c, descriptor, conf.files, project, p, repo, conf)
	default:
		return nil, fmt.Errorf("unsupported model artifact %T", artifact)
	}
}

// modelRepository finds the model store to register into: the named
// one, or the platform default.
func modelRepository(
	ctx context.Context, c Clients, nameOrID string,
) (*repositories.Repository, error) {
	if nameOrID == "" {
		repo, err := c.Repository.DefaultRepository(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot find the default model store: %w", err)
		}
		return repo, nil
	}

	repo, err := c.Repository.GetRepository(ctx, nameOrID)
	if err != nil {
		return nil, fmt.Errorf("cannot find model store %q: %w", nameOrID, err)
	}
	return repo, nil
}

// registerStore imports an analytic store as a deployable archive.
// The import carries everything at once, so no files or versions are
// layered on afterwards.
func registerStore(
	ctx context.Context, c Clients, st StoreTable,
	name string, project string, p *projects.Project, repo *repositories.Repository,
) (*Result, error) {
	if st.Table.Name == "" {
		return nil, fmt.Errorf("the analytic store table has no name")
	}

	archive, err := buildStoreArchive(ctx, c, st, name)
	if err != nil {
		return nil, err
	}

	if p == nil {
		// Resolve the project from what actually went into the
		// archive, not from the caller's descriptor.
		descriptor, err := inspectStoreArchive(archive)
		if err != nil {
			return nil, err
		}
		p, err = resolveProject(ctx, c, project, descriptor, repo)
		if err != nil {
			return nil, err
		}
	}

	model, err := c.Repository.ImportModelArchive(
		ctx, name, p.ID, bytes.NewReader(archive),
	)
	if err != nil {
		return nil, err
	}
	return &Result{Model: model}, nil
}

func registerEstimator(
	ctx context.Context, c Clients, e Estimator,
	name string, project string, p *projects.Project, repo *repositories.Repository,
	conf *registerConfig,
) (*Result, error) {
	if e == nil {
		return nil, fmt.Errorf("no estimator to register")
	}

	blob, err := e.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("cannot serialize the estimator: %w", err)
	}

	descriptor := describeEstimator(name, e)
	files := []File{
		{Name: SerializedModelFile, Content: blob, Role: models.RoleSerializedModel},
	}

	variables := firstFrame(conf.train, conf.valid, conf.test)
	if variables == nil {
		variables = conf.data
	}
	if variables != nil {
		descriptor.InputVariables = variables.Variables(models.VariableRoleInput)
		descriptor.OutputVariables = outputVariablesFor(descriptor.Function)
	}

	if conf.statistics != nil && firstFrame(conf.train, conf.valid, conf.test) != nil {
		stats, err := computeStatistics(ctx, conf.statistics, e, conf)
		if err != nil {
			return nil, err
		}
		files = append(files, stats...)
	}

	if conf.recordPackages {
		inventory, err := conf.packages.List()
		if err != nil {
			return nil, fmt.Errorf("cannot record the package inventory: %w", err)
		}
		pinned := pinnedPackages(inventory)
		for _, requirement := range pinned {
			pkg, version := splitRequirement(requirement)
			descriptor.Properties = append(
				descriptor.Properties, models.NewProperty("env_"+pkg, version),
			)
		}
		if len(pinned) > 0 && !filesContain(conf.files, environmentFile) {
			files = append(files, File{
				Name:    environmentFile,
				Content: []byte(strings.Join(pinned, "\n")),
			})
		}
	}

	warnings := []string{}
	code, err := scorecode.Generate(descriptor)
	switch {
	case errors.Is(err, scorecode.ErrNoVariables):
		warnings = append(warnings,
			"input/output variables could not be determined; "+
				"the model is registered without score code",
		)
	case err != nil:
		return nil, err
	default:
		files = append(files,
			File{Name: scoreModuleFile, Content: []byte(code.Module), Role: models.RoleScoreCode},
			File{Name: scoreGridFile, Content: []byte(code.Grid), Role: models.RoleGridScore},
			File{Name: scoreWrapperFile, Content: []byte(code.Wrapper)},
		)
	}

	files = append(files, conf.files...)

	result, err := registerDescriptor(ctx, c, descriptor, files, project, p, repo, conf)
	if err != nil {
		return nil, err
	}
	result.Warnings = append(warnings, result.Warnings...)
	return result, nil
}

// registerDescriptor is the shared tail of registration: resolve the
// project if it is to be created, store the model record and attach
// the files in manifest order.
func registerDescriptor(
	ctx context.Context, c Clients,
	descriptor models.Model, files []File,
	project string, p *projects.Project, repo *repositories.Repository,
	conf *registerConfig,
) (*Result, error) {
	if p == nil {
		created, err := resolveProject(ctx, c, project, descriptor, repo)
		if err != nil {
			return nil, err
		}
		p = created
	}
	descriptor.ProjectID = p.ID

	model, err := storeModel(ctx, c, descriptor, conf.version)
	if err != nil {
		return nil, err
	}

	for _, f := range files {
		if _, err := c.Repository.AddModelContent(
			ctx, model.ID, f.Name, bytes.NewReader(f.Content), f.Role,
		); err != nil {
			return nil, fmt.Errorf("cannot attach %s to model %s: %w", f.Name, model.ID, err)
		}
	}
	return &Result{Model: model}, nil
}

// storeModel stores the descriptor as a new model record, or starts a
// fresh version of the model already registered under its name.
//
// A fresh version keeps the existing record's metadata; only its
// carried-over contents are dropped, to be replaced by this
// registration's files.
func storeModel(
	ctx context.Context, c Clients, descriptor models.Model, version string,
) (*models.Model, error) {
	if version == VersionNew {
		return c.Repository.CreateModel(ctx, descriptor)
	}

	existing, err := c.Repository.GetModel(ctx, descriptor.Name)
	if errors.Is(err, rest.ErrNotFound) {
		return nil, fmt.Errorf(
			"no model named %q exists: cannot add a version to it", descriptor.Name,
		)
	}
	if err != nil {
		return nil, err
	}

	model, err := c.Repository.CreateModelVersion(ctx, existing.ID)
	if err != nil {
		return nil, err
	}
	if err := c.Repository.DeleteModelContents(ctx, model.ID); err != nil {
		return nil, err
	}
	return model, nil
}

// firstFrame picks the first supplied frame, in priority order.
func firstFrame(frames ...*dataset.Frame) *dataset.Frame {
	for _, f := range frames {
		if f != nil {
			return f
		}
	}
	return nil
}
