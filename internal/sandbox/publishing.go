package sandbox

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/scorecode"
	"github.com/modelmill/modelmill/pkg/utils"
)

// Destinations lists the publishing destinations.
func (s *Sandbox) Destinations() []publish.Destination {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]publish.Destination{}, s.destinations...)
}

// Destination finds a destination by name.
func (s *Sandbox) Destination(name string) (publish.Destination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.findDestination(name)
}

func (s *Sandbox) findDestination(name string) (publish.Destination, error) {
	for _, d := range s.destinations {
		if d.Name == name {
			return d, nil
		}
	}
	return publish.Destination{}, missing("destination", name)
}

// SubmitModelPublish starts a publish job for a registered model.
//
// The job settles only after it has been read the configured number of
// times, so clients go through their polling paths. Publishing to the
// micro-analytic service registers a module when the job completes;
// publishing an already-taken module name without force makes the job
// fail the way the platform does.
func (s *Sandbox) SubmitModelPublish(
	modelNameOrID, destinationName, publishName string, force, reload bool,
) (publish.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.findModel(modelNameOrID)
	if err != nil {
		return publish.Job{}, err
	}
	dest, err := s.findDestination(destinationName)
	if err != nil {
		return publish.Job{}, err
	}

	moduleName := publishName
	if moduleName == "" {
		moduleName = scorecode.ModuleName(rec.model.Name)
	}

	model := rec.model
	job := s.newJob(publish.Job{
		ModelID:         model.ID,
		ModelName:       model.Name,
		PublishName:     moduleName,
		DestinationName: dest.Name,
		DestinationType: dest.Type,
	})

	switch dest.Type {
	case publish.DestinationTypeMAS:
		job.settle = func(s *Sandbox, j *jobRecord) {
			if _, taken := s.modules[moduleName]; taken && !force {
				j.job.State = publish.JobStateFailed
				j.job.Log = fmt.Sprintf(
					"module %q is already published; publish with force to replace it",
					moduleName,
				)
				return
			}
			s.registerModule(moduleName, model)
			j.job.State = publish.JobStateCompleted
			j.job.Log = masSuccessLog(j.job.ID, moduleName)
		}
	case publish.DestinationTypeGrid:
		job.settle = func(s *Sandbox, j *jobRecord) {
			s.placeGridModel(dest, moduleName, reload)
			j.job.State = publish.JobStateCompleted
			j.job.Log = fmt.Sprintf(
				"model %q published to compute grid library %s",
				moduleName, dest.GridLibrary,
			)
		}
	default:
		job.settle = func(s *Sandbox, j *jobRecord) {
			j.job.State = publish.JobStateFailed
			j.job.Log = fmt.Sprintf("destination type %q is not publishable", dest.Type)
		}
	}

	return job.job, nil
}

var moduleHeader = regexp.MustCompile(`^\s*(?:grid\s+)?module\s+([a-z_][a-z0-9_]*)\s*;`)

// SubmitCodePublish starts a publish job for inline score code. The
// module name comes from the code's own module header.
func (s *Sandbox) SubmitCodePublish(code, destinationName string) (publish.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dest, err := s.findDestination(destinationName)
	if err != nil {
		return publish.Job{}, err
	}

	moduleName := ""
	if m := moduleHeader.FindStringSubmatch(code); m != nil {
		moduleName = m[1]
	}

	job := s.newJob(publish.Job{
		PublishName:     moduleName,
		DestinationName: dest.Name,
		DestinationType: dest.Type,
	})
	job.settle = func(s *Sandbox, j *jobRecord) {
		if moduleName == "" {
			j.job.State = publish.JobStateFailed
			j.job.Log = "score code names no module; expected a module header"
			return
		}
		if dest.Type == publish.DestinationTypeMAS {
			s.registerModule(moduleName, models.Model{Name: moduleName})
			j.job.State = publish.JobStateCompleted
			j.job.Log = masSuccessLog(j.job.ID, moduleName)
			return
		}
		j.job.State = publish.JobStateCompleted
		j.job.Log = fmt.Sprintf("score code %q published to %s", moduleName, dest.Name)
	}

	return job.job, nil
}

// newJob records a pending job. Callers hold the lock.
func (s *Sandbox) newJob(j publish.Job) *jobRecord {
	j.ID = uuid.NewString()
	j.State = publish.JobStatePending
	j.CreatedAt = now()
	j.Links = selfLinks("/modelPublish/jobs/" + j.ID)

	rec := &jobRecord{job: j, countdown: s.settleAfter}
	s.jobs[j.ID] = rec
	return rec
}

// PublishJob reads a publish job, advancing it toward settlement.
func (s *Sandbox) PublishJob(id string) (publish.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[id]
	if !ok {
		return publish.Job{}, missing("publish job", id)
	}
	if rec.job.Settled() {
		return rec.job, nil
	}

	if rec.countdown > 0 {
		rec.countdown--
		rec.job.State = publish.JobStateRunning
		return rec.job, nil
	}
	rec.settle(s, rec)
	return rec.job, nil
}

// registerModule places a module derived from a model's variables.
// Callers hold the lock.
func (s *Sandbox) registerModule(name string, model models.Model) {
	step := publish.Step{
		ID:      "score",
		Inputs:  stepParams(model.InputVariables),
		Outputs: stepParams(model.OutputVariables),
	}
	s.modules[name] = &moduleRecord{
		module: publish.Module{
			ID:      uuid.NewString(),
			Name:    name,
			Scope:   "public",
			StepIDs: []string{step.ID},
			Links:   selfLinks("/microAnalyticScore/modules/" + name),
		},
		steps: []publish.Step{step},
	}
}

func stepParams(vars []models.Variable) []publish.StepParam {
	return utils.Map(vars, func(v models.Variable) publish.StepParam {
		return publish.StepParam{Name: v.Name, Type: v.Type}
	})
}

// placeGridModel drops the published model table into the destination
// library, when the destination's grid is part of the sandbox. Callers
// hold the lock.
func (s *Sandbox) placeGridModel(dest publish.Destination, name string, reload bool) {
	srv, ok := s.grids[dest.GridServerID]
	if !ok {
		return
	}
	lib, ok := srv.libraries[libKey(dest.GridLibrary)]
	if !ok {
		lib = map[string]*tableRecord{}
		srv.libraries[libKey(dest.GridLibrary)] = lib
	}
	lib[name] = &tableRecord{columns: []string{"model"}, rows: 1, promoted: reload}
}

// masSuccessLog is the publish log a completed micro-analytic publish
// carries: a marker line followed by the links to the job and module.
func masSuccessLog(jobID, moduleName string) string {
	links, _ := json.Marshal(struct {
		Links []resources.Link `json:"links"`
	}{
		Links: []resources.Link{
			{
				Method: "GET",
				Rel:    "self",
				Href:   "/modelPublish/jobs/" + jobID,
			},
			{
				Method: "GET",
				Rel:    "module",
				Href:   "/microAnalyticScore/modules/" + moduleName,
				Type:   publish.MediaTypeModule,
			},
		},
	})
	return "SUCCESS===" + string(links)
}

// Module finds a published module by name.
func (s *Sandbox) Module(name string) (publish.Module, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.modules[name]
	if !ok {
		return publish.Module{}, missing("module", name)
	}
	return rec.module, nil
}

// ModuleSteps lists a module's callable steps.
func (s *Sandbox) ModuleSteps(name string) ([]publish.Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.modules[name]
	if !ok {
		return nil, missing("module", name)
	}
	return append([]publish.Step{}, rec.steps...), nil
}

// ExecuteStep runs one step of a module. The sandbox does not score;
// it answers with a zero value per declared output, or echoes the
// inputs for steps that declare none.
func (s *Sandbox) ExecuteStep(
	moduleName, stepID string, inputs map[string]any,
) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.modules[moduleName]
	if !ok {
		return nil, missing("module", moduleName)
	}
	step, ok := utils.First(rec.steps, func(st publish.Step) bool { return st.ID == stepID })
	if !ok {
		return nil, missing("step", stepID)
	}

	if len(step.Outputs) == 0 {
		outputs := map[string]any{}
		for name, value := range inputs {
			outputs[name] = value
		}
		return outputs, nil
	}

	outputs := map[string]any{}
	for _, out := range step.Outputs {
		outputs[out.Name] = zeroValue(out.Type)
	}
	return outputs, nil
}

func zeroValue(paramType string) any {
	switch paramType {
	case models.VariableTypeDecimal:
		return 0.0
	case models.VariableTypeInteger:
		return 0
	default:
		return ""
	}
}

// DropModule removes a module. Dropping an absent one reports false.
func (s *Sandbox) DropModule(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.modules[name]
	delete(s.modules, name)
	return ok
}
