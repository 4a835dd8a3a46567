package sandbox

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/utils"
)

// Repositories lists the model repositories.
func (s *Sandbox) Repositories() []repositories.Repository {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]repositories.Repository{}, s.repositories...)
}

// Repository finds a repository by name or id.
func (s *Sandbox) Repository(nameOrID string) (repositories.Repository, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.repositories {
		if r.ID == nameOrID || r.Name == nameOrID {
			return r, nil
		}
	}
	return repositories.Repository{}, missing("repository", nameOrID)
}

// CreateProject registers a project. Its name must be new.
func (s *Sandbox) CreateProject(p projects.Project) (projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name == "" {
		return projects.Project{}, fmt.Errorf("project name is required")
	}
	for _, existing := range s.projects {
		if existing.Name == p.Name {
			return projects.Project{}, fmt.Errorf(
				"%w: project %q already exists", ErrConflict, p.Name,
			)
		}
	}

	p.ID = uuid.NewString()
	p.CreatedAt = now()
	p.ModifiedAt = p.CreatedAt
	p.Links = selfLinks("/modelRepository/projects/" + p.ID)
	s.projects[p.ID] = &p
	return p, nil
}

// Project finds a project by name or id.
func (s *Sandbox) Project(nameOrID string) (projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.findProject(nameOrID)
	if err != nil {
		return projects.Project{}, err
	}
	return *p, nil
}

func (s *Sandbox) findProject(nameOrID string) (*projects.Project, error) {
	if p, ok := s.projects[nameOrID]; ok {
		return p, nil
	}
	for _, p := range s.projects {
		if p.Name == nameOrID {
			return p, nil
		}
	}
	return nil, missing("project", nameOrID)
}

// UpdateProject stores p over the project with the same id.
func (s *Sandbox) UpdateProject(p projects.Project) (projects.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.projects[p.ID]
	if !ok {
		return projects.Project{}, missing("project", p.ID)
	}

	p.CreatedAt = stored.CreatedAt
	p.ModifiedAt = now()
	p.Links = stored.Links
	s.projects[p.ID] = &p
	return p, nil
}

// CreateModel registers a model under an existing project.
func (s *Sandbox) CreateModel(m models.Model) (models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.Name == "" {
		return models.Model{}, fmt.Errorf("model name is required")
	}
	if _, err := s.findProject(m.ProjectID); err != nil {
		return models.Model{}, err
	}

	m.ID = uuid.NewString()
	if m.ModelVersionName == "" {
		m.ModelVersionName = "1.0"
	}
	m.CreatedAt = now()
	m.ModifiedAt = m.CreatedAt
	m.Links = selfLinks("/modelRepository/models/" + m.ID)
	s.models[m.ID] = &modelRecord{model: m, blobs: map[string][]byte{}}
	return m, nil
}

// Model finds a model by name or id.
func (s *Sandbox) Model(nameOrID string) (models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(nameOrID)
	if err != nil {
		return models.Model{}, err
	}
	return rec.model, nil
}

// Models lists registered models, sorted by name. A non-empty
// projectID narrows the listing to that project.
func (s *Sandbox) Models(projectID string) ([]models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if projectID != "" {
		if _, err := s.findProject(projectID); err != nil {
			return nil, err
		}
	}

	found := []models.Model{}
	for _, rec := range s.models {
		if projectID != "" && rec.model.ProjectID != projectID {
			continue
		}
		found = append(found, rec.model)
	}
	return utils.Sorted(
		found, func(a, b models.Model) bool { return a.Name < b.Name },
	), nil
}

func (s *Sandbox) findModel(nameOrID string) (*modelRecord, error) {
	if rec, ok := s.models[nameOrID]; ok {
		return rec, nil
	}
	for _, rec := range s.models {
		if rec.model.Name == nameOrID {
			return rec, nil
		}
	}
	return nil, missing("model", nameOrID)
}

// NewModelVersion starts the next major version of a model. The model
// keeps its id; its contents stay until the caller drops them.
func (s *Sandbox) NewModelVersion(modelID string) (models.Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(modelID)
	if err != nil {
		return models.Model{}, err
	}

	rec.model.ModelVersionName = nextMajorVersion(rec.model.ModelVersionName)
	rec.model.ModifiedAt = now()
	return rec.model, nil
}

func nextMajorVersion(version string) string {
	major, _, _ := strings.Cut(version, ".")
	n, err := strconv.Atoi(major)
	if err != nil {
		return "2.0"
	}
	return strconv.Itoa(n+1) + ".0"
}

// AddContent attaches one file to a model.
func (s *Sandbox) AddContent(modelID, name, role string, data []byte) (models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(modelID)
	if err != nil {
		return models.Content{}, err
	}

	content := models.Content{
		ID:   uuid.NewString(),
		Name: name,
		Role: role,
		Size: len(data),
	}
	rec.contents = append(rec.contents, content)
	rec.blobs[content.ID] = data
	return content, nil
}

// Contents lists the files attached to a model.
func (s *Sandbox) Contents(modelID string) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(modelID)
	if err != nil {
		return nil, err
	}
	return append([]models.Content{}, rec.contents...), nil
}

// ContentData reads one attached file's bytes by content name.
func (s *Sandbox) ContentData(modelID, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(modelID)
	if err != nil {
		return nil, err
	}
	for _, c := range rec.contents {
		if c.Name == name {
			return rec.blobs[c.ID], nil
		}
	}
	return nil, missing("content", name)
}

// DropContents removes every file attached to a model.
func (s *Sandbox) DropContents(modelID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(modelID)
	if err != nil {
		return err
	}
	rec.contents = nil
	rec.blobs = map[string][]byte{}
	return nil
}

// archive entry names the import endpoint understands.
const (
	importPropsEntry   = "ModelProperties.json"
	importInputsEntry  = "inputVar.json"
	importOutputsEntry = "outputVar.json"
)

// ImportArchive creates a model from a deployable zip archive. The
// metadata entry fills the model record; every entry becomes an
// attached file.
func (s *Sandbox) ImportArchive(name, projectID string, archive []byte) (models.Model, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return models.Model{}, fmt.Errorf("broken model archive: %w", err)
	}

	m := models.Model{Name: name, ProjectID: projectID}
	type entry struct {
		name string
		data []byte
	}
	entries := []entry{}
	for _, f := range zr.File {
		data, err := readZipEntry(f)
		if err != nil {
			return models.Model{}, err
		}
		entries = append(entries, entry{name: f.Name, data: data})

		switch f.Name {
		case importPropsEntry:
			props := struct {
				Name        string `json:"name"`
				Description string `json:"description"`
				Function    string `json:"function"`
				Algorithm   string `json:"algorithm"`
				TargetLevel string `json:"targetLevel"`
				Tool        string `json:"tool"`
			}{}
			if err := json.Unmarshal(data, &props); err != nil {
				return models.Model{}, fmt.Errorf("broken %s: %w", f.Name, err)
			}
			if m.Name == "" {
				m.Name = props.Name
			}
			m.Description = props.Description
			m.Function = props.Function
			m.Algorithm = props.Algorithm
			m.TargetLevel = props.TargetLevel
			m.Tool = props.Tool
		case importInputsEntry:
			if err := json.Unmarshal(data, &m.InputVariables); err != nil {
				return models.Model{}, fmt.Errorf("broken %s: %w", f.Name, err)
			}
		case importOutputsEntry:
			if err := json.Unmarshal(data, &m.OutputVariables); err != nil {
				return models.Model{}, fmt.Errorf("broken %s: %w", f.Name, err)
			}
		}
	}

	created, err := s.CreateModel(m)
	if err != nil {
		return models.Model{}, err
	}
	for _, e := range entries {
		if _, err := s.AddContent(created.ID, e.name, "", e.data); err != nil {
			return models.Model{}, err
		}
	}
	return created, nil
}

func readZipEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("broken archive entry %s: %w", f.Name, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func selfLinks(href string) []resources.Link {
	return []resources.Link{{
		Method: "GET",
		Rel:    "self",
		Href:   href,
		URI:    href,
	}}
}
