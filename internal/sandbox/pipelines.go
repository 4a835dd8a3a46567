package sandbox

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/modelmill/modelmill/pkg/api/types/pipelines"
)

// AutomationEnabled answers whether the pipeline-automation surface is
// part of this sandbox.
func (s *Sandbox) AutomationEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.automation
}

// CreateAutomationProject registers an automation project. The model
// search it stands for never finishes in the sandbox; the project
// stays in its running state.
func (s *Sandbox) CreateAutomationProject(
	p pipelines.AutomationProject,
) (pipelines.AutomationProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.Name == "" {
		return pipelines.AutomationProject{}, fmt.Errorf("automation project name is required")
	}
	if p.DataTableURI == "" {
		return pipelines.AutomationProject{}, fmt.Errorf("dataTableUri is required")
	}
	if p.Attributes.TargetVariable == "" {
		return pipelines.AutomationProject{}, fmt.Errorf("targetVariable is required")
	}

	p.ID = uuid.NewString()
	p.State = "running"
	p.CreatedAt = now()
	p.Links = selfLinks("/pipelineAutomation/projects/" + p.ID)
	s.automationProjects[p.ID] = &p
	return p, nil
}

// AutomationProjects lists the registered automation projects.
func (s *Sandbox) AutomationProjects() []pipelines.AutomationProject {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects := []pipelines.AutomationProject{}
	for _, p := range s.automationProjects {
		projects = append(projects, *p)
	}
	return projects
}
