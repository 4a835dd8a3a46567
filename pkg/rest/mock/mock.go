package mock

import (
	"context"
	"io"
	"testing"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/performance"
	"github.com/modelmill/modelmill/pkg/api/types/pipelines"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/rest"
)

type AddModelContentArgs struct {
	ModelID string
	Name    string
	Content []byte
	Role    string
}

type ImportModelArchiveArgs struct {
	Name      string
	ProjectID string
	Archive   []byte
}

func NewRepository(t *testing.T) *mockRepository {
	return &mockRepository{t: t}
}

type mockRepository struct {
	t    *testing.T
	Impl struct {
		ListRepositories    func(ctx context.Context) ([]repositories.Repository, error)
		DefaultRepository   func(ctx context.Context) (*repositories.Repository, error)
		GetRepository       func(ctx context.Context, nameOrID string) (*repositories.Repository, error)
		GetProject          func(ctx context.Context, nameOrID string) (*projects.Project, error)
		CreateProject       func(ctx context.Context, p projects.Project) (*projects.Project, error)
		UpdateProject       func(ctx context.Context, p projects.Project) (*projects.Project, error)
		ListModels          func(ctx context.Context, projectID string) ([]models.Model, error)
		GetModel            func(ctx context.Context, nameOrID string) (*models.Model, error)
		CreateModel         func(ctx context.Context, m models.Model) (*models.Model, error)
		CreateModelVersion  func(ctx context.Context, modelID string) (*models.Model, error)
		DeleteModelContents func(ctx context.Context, modelID string) error
		AddModelContent     func(ctx context.Context, modelID string, name string, content []byte, role string) (*models.Content, error)
		ListModelContents   func(ctx context.Context, modelID string) ([]models.Content, error)
		ImportModelArchive  func(ctx context.Context, name string, projectID string, archive []byte) (*models.Model, error)
	}
	Calls struct {
		ListRepositories    int
		DefaultRepository   int
		GetRepository       []string
		GetProject          []string
		CreateProject       []projects.Project
		UpdateProject       []projects.Project
		ListModels          []string
		GetModel            []string
		CreateModel         []models.Model
		CreateModelVersion  []string
		DeleteModelContents []string
		AddModelContent     []AddModelContentArgs
		ListModelContents   []string
		ImportModelArchive  []ImportModelArchiveArgs
	}
}

var _ rest.Repository = &mockRepository{}

func (m *mockRepository) ListRepositories(ctx context.Context) ([]repositories.Repository, error) {
	m.t.Helper()

	m.Calls.ListRepositories += 1
	if m.Impl.ListRepositories == nil {
		m.t.Fatal("ListRepositories is not ready to be called")
	}
	return m.Impl.ListRepositories(ctx)
}

func (m *mockRepository) DefaultRepository(ctx context.Context) (*repositories.Repository, error) {
	m.t.Helper()

	m.Calls.DefaultRepository += 1
	if m.Impl.DefaultRepository == nil {
		m.t.Fatal("DefaultRepository is not ready to be called")
	}
	return m.Impl.DefaultRepository(ctx)
}

func (m *mockRepository) GetRepository(ctx context.Context, nameOrID string) (*repositories.Repository, error) {
	m.t.Helper()

	m.Calls.GetRepository = append(m.Calls.GetRepository, nameOrID)
	if m.Impl.GetRepository == nil {
		m.t.Fatal("GetRepository is not ready to be called")
	}
	return m.Impl.GetRepository(ctx, nameOrID)
}

func (m *mockRepository) GetProject(ctx context.Context, nameOrID string) (*projects.Project, error) {
	m.t.Helper()

	m.Calls.GetProject = append(m.Calls.GetProject, nameOrID)
	if m.Impl.GetProject == nil {
		m.t.Fatal("GetProject is not ready to be called")
	}
	return m.Impl.GetProject(ctx, nameOrID)
}

func (m *mockRepository) CreateProject(ctx context.Context, p projects.Project) (*projects.Project, error) {
	m.t.Helper()

	m.Calls.CreateProject = append(m.Calls.CreateProject, p)
	if m.Impl.CreateProject == nil {
		m.t.Fatal("CreateProject is not ready to be called")
	}
	return m.Impl.CreateProject(ctx, p)
}

func (m *mockRepository) UpdateProject(ctx context.Context, p projects.Project) (*projects.Project, error) {
	m.t.Helper()

	m.Calls.UpdateProject = append(m.Calls.UpdateProject, p)
	if m.Impl.UpdateProject == nil {
		m.t.Fatal("UpdateProject is not ready to be called")
	}
	return m.Impl.UpdateProject(ctx, p)
}

func (m *mockRepository) ListModels(ctx context.Context, projectID string) ([]models.Model, error) {
	m.t.Helper()

	m.Calls.ListModels = append(m.Calls.ListModels, projectID)
	if m.Impl.ListModels == nil {
		m.t.Fatal("ListModels is not ready to be called")
	}
	return m.Impl.ListModels(ctx, projectID)
}

func (m *mockRepository) GetModel(ctx context.Context, nameOrID string) (*models.Model, error) {
	m.t.Helper()

	m.Calls.GetModel = append(m.Calls.GetModel, nameOrID)
	if m.Impl.GetModel == nil {
		m.t.Fatal("GetModel is not ready to be called")
	}
	return m.Impl.GetModel(ctx, nameOrID)
}

func (m *mockRepository) CreateModel(ctx context.Context, mdl models.Model) (*models.Model, error) {
	m.t.Helper()

	m.Calls.CreateModel = append(m.Calls.CreateModel, mdl)
	if m.Impl.CreateModel == nil {
		m.t.Fatal("CreateModel is not ready to be called")
	}
	return m.Impl.CreateModel(ctx, mdl)
}

func (m *mockRepository) CreateModelVersion(ctx context.Context, modelID string) (*models.Model, error) {
	m.t.Helper()

	m.Calls.CreateModelVersion = append(m.Calls.CreateModelVersion, modelID)
	if m.Impl.CreateModelVersion == nil {
		m.t.Fatal("CreateModelVersion is not ready to be called")
	}
	return m.Impl.CreateModelVersion(ctx, modelID)
}

func (m *mockRepository) DeleteModelContents(ctx context.Context, modelID string) error {
	m.t.Helper()

	m.Calls.DeleteModelContents = append(m.Calls.DeleteModelContents, modelID)
	if m.Impl.DeleteModelContents == nil {
		m.t.Fatal("DeleteModelContents is not ready to be called")
	}
	return m.Impl.DeleteModelContents(ctx, modelID)
}

func (m *mockRepository) AddModelContent(
	ctx context.Context, modelID string, name string, content io.Reader, role string,
) (*models.Content, error) {
	m.t.Helper()

	buf, err := io.ReadAll(content)
	if err != nil {
		m.t.Fatal(err)
	}
	m.Calls.AddModelContent = append(m.Calls.AddModelContent, AddModelContentArgs{
		ModelID: modelID, Name: name, Content: buf, Role: role,
	})
	if m.Impl.AddModelContent == nil {
		m.t.Fatal("AddModelContent is not ready to be called")
	}
	return m.Impl.AddModelContent(ctx, modelID, name, buf, role)
}

func (m *mockRepository) ListModelContents(ctx context.Context, modelID string) ([]models.Content, error) {
	m.t.Helper()

	m.Calls.ListModelContents = append(m.Calls.ListModelContents, modelID)
	if m.Impl.ListModelContents == nil {
		m.t.Fatal("ListModelContents is not ready to be called")
	}
	return m.Impl.ListModelContents(ctx, modelID)
}

func (m *mockRepository) ImportModelArchive(
	ctx context.Context, name string, projectID string, archive io.Reader,
) (*models.Model, error) {
	m.t.Helper()

	buf, err := io.ReadAll(archive)
	if err != nil {
		m.t.Fatal(err)
	}
	m.Calls.ImportModelArchive = append(m.Calls.ImportModelArchive, ImportModelArchiveArgs{
		Name: name, ProjectID: projectID, Archive: buf,
	})
	if m.Impl.ImportModelArchive == nil {
		m.t.Fatal("ImportModelArchive is not ready to be called")
	}
	return m.Impl.ImportModelArchive(ctx, name, projectID, buf)
}

type PublishModelArgs struct {
	ModelID     string
	Destination string
	Settings    rest.PublishSettings
}

func NewManagement(t *testing.T) *mockManagement {
	return &mockManagement{t: t}
}

type mockManagement struct {
	t    *testing.T
	Impl struct {
		PublishModel                 func(ctx context.Context, modelID string, destination string, settings rest.PublishSettings) (*publish.Job, error)
		ListPerformanceDefinitions   func(ctx context.Context) ([]performance.Definition, error)
		ExecutePerformanceDefinition func(ctx context.Context, definitionID string) error
	}
	Calls struct {
		PublishModel                 []PublishModelArgs
		ListPerformanceDefinitions   int
		ExecutePerformanceDefinition []string
	}
}

var _ rest.Management = &mockManagement{}

func (m *mockManagement) PublishModel(
	ctx context.Context, modelID string, destination string, settings rest.PublishSettings,
) (*publish.Job, error) {
	m.t.Helper()

	m.Calls.PublishModel = append(m.Calls.PublishModel, PublishModelArgs{
		ModelID: modelID, Destination: destination, Settings: settings,
	})
	if m.Impl.PublishModel == nil {
		m.t.Fatal("PublishModel is not ready to be called")
	}
	return m.Impl.PublishModel(ctx, modelID, destination, settings)
}

func (m *mockManagement) ListPerformanceDefinitions(ctx context.Context) ([]performance.Definition, error) {
	m.t.Helper()

	m.Calls.ListPerformanceDefinitions += 1
	if m.Impl.ListPerformanceDefinitions == nil {
		m.t.Fatal("ListPerformanceDefinitions is not ready to be called")
	}
	return m.Impl.ListPerformanceDefinitions(ctx)
}

func (m *mockManagement) ExecutePerformanceDefinition(ctx context.Context, definitionID string) error {
	m.t.Helper()

	m.Calls.ExecutePerformanceDefinition = append(m.Calls.ExecutePerformanceDefinition, definitionID)
	if m.Impl.ExecutePerformanceDefinition == nil {
		m.t.Fatal("ExecutePerformanceDefinition is not ready to be called")
	}
	return m.Impl.ExecutePerformanceDefinition(ctx, definitionID)
}

type PublishCodeArgs struct {
	Code        string
	Destination string
}

func NewPublisher(t *testing.T) *mockPublisher {
	return &mockPublisher{t: t}
}

type mockPublisher struct {
	t    *testing.T
	Impl struct {
		ListDestinations func(ctx context.Context) ([]publish.Destination, error)
		GetDestination   func(ctx context.Context, name string) (*publish.Destination, error)
		PublishCode      func(ctx context.Context, code string, destination string) (*publish.Job, error)
		GetJob           func(ctx context.Context, jobID string) (*publish.Job, error)
	}
	Calls struct {
		ListDestinations int
		GetDestination   []string
		PublishCode      []PublishCodeArgs
		GetJob           []string
	}
}

var _ rest.Publisher = &mockPublisher{}

func (m *mockPublisher) ListDestinations(ctx context.Context) ([]publish.Destination, error) {
	m.t.Helper()

	m.Calls.ListDestinations += 1
	if m.Impl.ListDestinations == nil {
		m.t.Fatal("ListDestinations is not ready to be called")
	}
	return m.Impl.ListDestinations(ctx)
}

func (m *mockPublisher) GetDestination(ctx context.Context, name string) (*publish.Destination, error) {
	m.t.Helper()

	m.Calls.GetDestination = append(m.Calls.GetDestination, name)
	if m.Impl.GetDestination == nil {
		m.t.Fatal("GetDestination is not ready to be called")
	}
	return m.Impl.GetDestination(ctx, name)
}

func (m *mockPublisher) PublishCode(ctx context.Context, code string, destination string) (*publish.Job, error) {
	m.t.Helper()

	m.Calls.PublishCode = append(m.Calls.PublishCode, PublishCodeArgs{
		Code: code, Destination: destination,
	})
	if m.Impl.PublishCode == nil {
		m.t.Fatal("PublishCode is not ready to be called")
	}
	return m.Impl.PublishCode(ctx, code, destination)
}

func (m *mockPublisher) GetJob(ctx context.Context, jobID string) (*publish.Job, error) {
	m.t.Helper()

	m.Calls.GetJob = append(m.Calls.GetJob, jobID)
	if m.Impl.GetJob == nil {
		m.t.Fatal("GetJob is not ready to be called")
	}
	return m.Impl.GetJob(ctx, jobID)
}

type ExecuteStepArgs struct {
	Module string
	StepID string
	Inputs map[string]any
}

func NewMAS(t *testing.T) *mockMAS {
	return &mockMAS{t: t}
}

type mockMAS struct {
	t    *testing.T
	Impl struct {
		GetModule      func(ctx context.Context, name string) (*publish.Module, error)
		GetModuleByURL func(ctx context.Context, moduleURL string) (*publish.Module, string, error)
		ListSteps      func(ctx context.Context, moduleName string) ([]publish.Step, error)
		ExecuteStep    func(ctx context.Context, moduleName string, stepID string, inputs map[string]any) (map[string]any, error)
		DeleteModule   func(ctx context.Context, name string) error
	}
	Calls struct {
		GetModule      []string
		GetModuleByURL []string
		ListSteps      []string
		ExecuteStep    []ExecuteStepArgs
		DeleteModule   []string
	}
}

var _ rest.MAS = &mockMAS{}

func (m *mockMAS) GetModule(ctx context.Context, name string) (*publish.Module, error) {
	m.t.Helper()

	m.Calls.GetModule = append(m.Calls.GetModule, name)
	if m.Impl.GetModule == nil {
		m.t.Fatal("GetModule is not ready to be called")
	}
	return m.Impl.GetModule(ctx, name)
}

func (m *mockMAS) GetModuleByURL(ctx context.Context, moduleURL string) (*publish.Module, string, error) {
	m.t.Helper()

	m.Calls.GetModuleByURL = append(m.Calls.GetModuleByURL, moduleURL)
	if m.Impl.GetModuleByURL == nil {
		m.t.Fatal("GetModuleByURL is not ready to be called")
	}
	return m.Impl.GetModuleByURL(ctx, moduleURL)
}

func (m *mockMAS) ListSteps(ctx context.Context, moduleName string) ([]publish.Step, error) {
	m.t.Helper()

	m.Calls.ListSteps = append(m.Calls.ListSteps, moduleName)
	if m.Impl.ListSteps == nil {
		m.t.Fatal("ListSteps is not ready to be called")
	}
	return m.Impl.ListSteps(ctx, moduleName)
}

func (m *mockMAS) ExecuteStep(
	ctx context.Context, moduleName string, stepID string, inputs map[string]any,
) (map[string]any, error) {
	m.t.Helper()

	m.Calls.ExecuteStep = append(m.Calls.ExecuteStep, ExecuteStepArgs{
		Module: moduleName, StepID: stepID, Inputs: inputs,
	})
	if m.Impl.ExecuteStep == nil {
		m.t.Fatal("ExecuteStep is not ready to be called")
	}
	return m.Impl.ExecuteStep(ctx, moduleName, stepID, inputs)
}

func (m *mockMAS) DeleteModule(ctx context.Context, name string) error {
	m.t.Helper()

	m.Calls.DeleteModule = append(m.Calls.DeleteModule, name)
	if m.Impl.DeleteModule == nil {
		m.t.Fatal("DeleteModule is not ready to be called")
	}
	return m.Impl.DeleteModule(ctx, name)
}

func NewPipelines(t *testing.T) *mockPipelines {
	return &mockPipelines{t: t}
}

type mockPipelines struct {
	t    *testing.T
	Impl struct {
		Available     func(ctx context.Context) (bool, error)
		CreateProject func(ctx context.Context, p pipelines.AutomationProject) (*pipelines.AutomationProject, error)
	}
	Calls struct {
		Available     int
		CreateProject []pipelines.AutomationProject
	}
}

var _ rest.Pipelines = &mockPipelines{}

func (m *mockPipelines) Available(ctx context.Context) (bool, error) {
	m.t.Helper()

	m.Calls.Available += 1
	if m.Impl.Available == nil {
		m.t.Fatal("Available is not ready to be called")
	}
	return m.Impl.Available(ctx)
}

func (m *mockPipelines) CreateProject(
	ctx context.Context, p pipelines.AutomationProject,
) (*pipelines.AutomationProject, error) {
	m.t.Helper()

	m.Calls.CreateProject = append(m.Calls.CreateProject, p)
	if m.Impl.CreateProject == nil {
		m.t.Fatal("CreateProject is not ready to be called")
	}
	return m.Impl.CreateProject(ctx, p)
}

func NewDataSources(t *testing.T) *mockDataSources {
	return &mockDataSources{t: t}
}

type mockDataSources struct {
	t    *testing.T
	Impl struct {
		ResolveTable func(ctx context.Context, ref tables.Ref) (*tables.Ref, error)
	}
	Calls struct {
		ResolveTable []tables.Ref
	}
}

var _ rest.DataSources = &mockDataSources{}

func (m *mockDataSources) ResolveTable(ctx context.Context, ref tables.Ref) (*tables.Ref, error) {
	m.t.Helper()

	m.Calls.ResolveTable = append(m.Calls.ResolveTable, ref)
	if m.Impl.ResolveTable == nil {
		m.t.Fatal("ResolveTable is not ready to be called")
	}
	return m.Impl.ResolveTable(ctx, ref)
}

type UploadTableArgs struct {
	Name    string
	Library string
	Content []byte
}

type TableArgs struct {
	Name    string
	Library string
}

func NewGrid(t *testing.T) *mockGrid {
	return &mockGrid{t: t}
}

type mockGrid struct {
	t    *testing.T
	Impl struct {
		UploadTable   func(ctx context.Context, content []byte, name string, library string) (*tables.Ref, error)
		ListTables    func(ctx context.Context, library string) ([]string, error)
		TableInfo     func(ctx context.Context, name string, library string) (*tables.Info, error)
		DownloadStore func(ctx context.Context, name string, library string) ([]byte, error)
	}
	Calls struct {
		UploadTable   []UploadTableArgs
		ListTables    []string
		TableInfo     []TableArgs
		DownloadStore []TableArgs
	}
}

var _ rest.Grid = &mockGrid{}

func (m *mockGrid) UploadTable(
	ctx context.Context, content io.Reader, name string, library string,
	opts ...rest.UploadOption,
) (*tables.Ref, error) {
	m.t.Helper()

	buf, err := io.ReadAll(content)
	if err != nil {
		m.t.Fatal(err)
	}
	m.Calls.UploadTable = append(m.Calls.UploadTable, UploadTableArgs{
		Name: name, Library: library, Content: buf,
	})
	if m.Impl.UploadTable == nil {
		m.t.Fatal("UploadTable is not ready to be called")
	}
	return m.Impl.UploadTable(ctx, buf, name, library)
}

func (m *mockGrid) ListTables(ctx context.Context, library string) ([]string, error) {
	m.t.Helper()

	m.Calls.ListTables = append(m.Calls.ListTables, library)
	if m.Impl.ListTables == nil {
		m.t.Fatal("ListTables is not ready to be called")
	}
	return m.Impl.ListTables(ctx, library)
}

func (m *mockGrid) TableInfo(ctx context.Context, name string, library string) (*tables.Info, error) {
	m.t.Helper()

	m.Calls.TableInfo = append(m.Calls.TableInfo, TableArgs{Name: name, Library: library})
	if m.Impl.TableInfo == nil {
		m.t.Fatal("TableInfo is not ready to be called")
	}
	return m.Impl.TableInfo(ctx, name, library)
}

func (m *mockGrid) DownloadStore(ctx context.Context, name string, library string) ([]byte, error) {
	m.t.Helper()

	m.Calls.DownloadStore = append(m.Calls.DownloadStore, TableArgs{Name: name, Library: library})
	if m.Impl.DownloadStore == nil {
		m.t.Fatal("DownloadStore is not ready to be called")
	}
	return m.Impl.DownloadStore(ctx, name, library)
}
