// Package sandbox is the in-memory state behind the millbox emulator:
// every platform resource the Modelmill client can touch, held in maps
// and mutated under one lock.
//
// The sandbox emulates behavior, not performance. Publish jobs settle
// after a configured number of polls so clients exercise their real
// polling paths; modules derive their steps from the published model's
// variables; the compute grid parses the CSV it is given. Nothing
// persists past the process.
package sandbox

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/modelmill/modelmill/pkg/api/types/folders"
	"github.com/modelmill/modelmill/pkg/api/types/misc/rfctime"
	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/performance"
	"github.com/modelmill/modelmill/pkg/api/types/pipelines"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/utils/pointer"
)

// ErrNotFound marks lookups of resources the sandbox does not hold.
var ErrNotFound = errors.New("not found")

// ErrConflict marks writes that collide with an existing resource.
var ErrConflict = errors.New("conflict")

// Account is one user the emulator authenticates.
type Account struct {
	User     string
	Password string
}

// SeedRepository declares one model repository to start with.
type SeedRepository struct {
	Name        string
	Description string
	Default     bool
}

// SeedStore places an analytic store into a grid library at startup,
// so store-based registration flows have something to download.
type SeedStore struct {
	Library string
	Table   string
	Content []byte
}

// SeedGridServer declares one compute grid server with its libraries.
type SeedGridServer struct {
	ID        string
	Libraries []string
	Stores    []SeedStore
}

// SeedDefinition declares a performance definition. Project names are
// resolved to ids when the definition is listed, so definitions can be
// written before the projects they monitor exist.
type SeedDefinition struct {
	Name            string
	Description     string
	ProjectNames    []string
	GridServerID    string
	DataLibrary     string
	DataPrefix      string
	ScoreRequired   bool
	InputVariables  []string
	OutputVariables []string
}

// Seed is the initial content of a sandbox.
type Seed struct {
	Accounts     []Account
	Repositories []SeedRepository
	Destinations []publish.Destination
	GridServers  []SeedGridServer
	Definitions  []SeedDefinition

	// Automation enables the pipeline-automation surface. Disabled,
	// the probe endpoint answers 404 like a deployment without it.
	Automation bool

	// SettleAfter is how many times a publish job is read before it
	// settles. Zero settles jobs on their first read.
	SettleAfter int
}

type modelRecord struct {
	model    models.Model
	contents []models.Content
	blobs    map[string][]byte // content id -> data
}

type jobRecord struct {
	job publish.Job

	// polls left until the job settles
	countdown int

	// what settling does, decided at submission time
	settle func(s *Sandbox, j *jobRecord)
}

type moduleRecord struct {
	module publish.Module
	steps  []publish.Step
}

type tableRecord struct {
	columns  []string
	rows     int
	data     []byte
	promoted bool
}

type gridServer struct {
	libraries map[string]map[string]*tableRecord // library -> table -> record
	stores    map[string][]byte                  // library/table -> store bytes
}

type definitionRecord struct {
	def          performance.Definition
	projectNames []string
	runs         []time.Time
}

// Sandbox holds the emulated platform. Safe for concurrent use.
type Sandbox struct {
	mu sync.Mutex

	accounts map[string]string // user -> password

	repositories []repositories.Repository
	projects     map[string]*projects.Project
	models       map[string]*modelRecord
	folders      map[string]*folders.Folder
	homeFolders  map[string]string // user -> folder id

	destinations []publish.Destination
	jobs         map[string]*jobRecord
	modules      map[string]*moduleRecord

	definitions map[string]*definitionRecord
	grids       map[string]*gridServer

	automation         bool
	automationProjects map[string]*pipelines.AutomationProject

	settleAfter int
}

// New builds a sandbox from its seed.
func New(seed Seed) *Sandbox {
	s := &Sandbox{
		accounts:           map[string]string{},
		projects:           map[string]*projects.Project{},
		models:             map[string]*modelRecord{},
		folders:            map[string]*folders.Folder{},
		homeFolders:        map[string]string{},
		jobs:               map[string]*jobRecord{},
		modules:            map[string]*moduleRecord{},
		definitions:        map[string]*definitionRecord{},
		grids:              map[string]*gridServer{},
		automation:         seed.Automation,
		automationProjects: map[string]*pipelines.AutomationProject{},
		settleAfter:        seed.SettleAfter,
	}

	for _, a := range seed.Accounts {
		s.accounts[a.User] = a.Password
	}

	for _, r := range seed.Repositories {
		folder := s.newFolder(folders.Folder{Name: r.Name})
		s.repositories = append(s.repositories, repositories.Repository{
			ID:          uuid.NewString(),
			Name:        r.Name,
			Description: r.Description,
			Default:     r.Default,
			FolderID:    folder.ID,
		})
	}

	for _, d := range seed.Destinations {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		s.destinations = append(s.destinations, d)
	}

	for _, g := range seed.GridServers {
		srv := &gridServer{
			libraries: map[string]map[string]*tableRecord{},
			stores:    map[string][]byte{},
		}
		for _, lib := range g.Libraries {
			srv.libraries[libKey(lib)] = map[string]*tableRecord{}
		}
		for _, st := range g.Stores {
			if _, ok := srv.libraries[libKey(st.Library)]; !ok {
				srv.libraries[libKey(st.Library)] = map[string]*tableRecord{}
			}
			srv.stores[storeKey(st.Library, st.Table)] = st.Content
		}
		s.grids[g.ID] = srv
	}

	for _, d := range seed.Definitions {
		id := uuid.NewString()
		s.definitions[id] = &definitionRecord{
			def: performance.Definition{
				ID:                     id,
				Name:                   d.Name,
				Description:            d.Description,
				GridServerID:           d.GridServerID,
				DataLibrary:            d.DataLibrary,
				DataPrefix:             d.DataPrefix,
				ScoreExecutionRequired: d.ScoreRequired,
				InputVariables:         d.InputVariables,
				OutputVariables:        d.OutputVariables,
			},
			projectNames: d.ProjectNames,
		}
	}

	return s
}

// Authenticate answers whether user/password is a seeded account.
func (s *Sandbox) Authenticate(user, password string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expected, ok := s.accounts[user]
	return ok && expected == password
}

func now() *rfctime.RFC3339 {
	return pointer.Ref(rfctime.New(time.Now().Truncate(time.Second)))
}

func libKey(library string) string {
	return strings.ToLower(library)
}

func storeKey(library, table string) string {
	return strings.ToLower(library) + "/" + strings.ToLower(table)
}

func missing(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}
