package sandbox

import (
	"fmt"
	"strings"
	"time"

	"github.com/modelmill/modelmill/pkg/api/types/performance"
)

// Definitions lists the performance definitions. Seeded project names
// resolve to the ids of the projects currently registered, so a
// definition written before its project exists starts covering it the
// moment the project is created.
func (s *Sandbox) Definitions() []performance.Definition {
	s.mu.Lock()
	defer s.mu.Unlock()

	defs := []performance.Definition{}
	for _, rec := range s.definitions {
		defs = append(defs, s.resolveDefinition(rec))
	}
	return defs
}

func (s *Sandbox) resolveDefinition(rec *definitionRecord) performance.Definition {
	def := rec.def
	def.ProjectIDs = nil
	for _, name := range rec.projectNames {
		if p, err := s.findProject(name); err == nil {
			def.ProjectIDs = append(def.ProjectIDs, p.ID)
		}
	}
	return def
}

// RunDefinition executes a performance definition over the data on its
// grid library. Without at least one table under the definition's
// prefix there is nothing to measure, and the run is refused.
func (s *Sandbox) RunDefinition(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.definitions[id]
	if !ok {
		return missing("performance definition", id)
	}

	if !s.hasPerformanceData(rec.def) {
		return fmt.Errorf(
			"no tables under prefix %q in library %s; upload performance data first",
			rec.def.DataPrefix, rec.def.DataLibrary,
		)
	}

	rec.runs = append(rec.runs, time.Now())
	return nil
}

func (s *Sandbox) hasPerformanceData(def performance.Definition) bool {
	srv, ok := s.grids[def.GridServerID]
	if !ok {
		return false
	}
	lib, ok := srv.libraries[libKey(def.DataLibrary)]
	if !ok {
		return false
	}
	prefix := strings.ToLower(def.DataPrefix)
	for name := range lib {
		if strings.HasPrefix(strings.ToLower(name), prefix) {
			return true
		}
	}
	return false
}

// DefinitionRuns counts how many times a definition has run.
func (s *Sandbox) DefinitionRuns(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.definitions[id]
	if !ok {
		return 0
	}
	return len(rec.runs)
}
