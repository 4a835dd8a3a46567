// Package millbox holds the configuration of the millbox emulator.
package millbox

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/modelmill/modelmill/internal/sandbox"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/utils"
	"github.com/modelmill/modelmill/pkg/utils/base64marshall"
)

type Account struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
}

type Repository struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Default     bool   `yaml:"default,omitempty"`
}

type Destination struct {
	Name         string `yaml:"name"`
	Type         string `yaml:"type"`
	Description  string `yaml:"description,omitempty"`
	GridServerID string `yaml:"gridServerId,omitempty"`
	GridLibrary  string `yaml:"gridLibrary,omitempty"`
}

type Store struct {
	Library string `yaml:"library"`
	Table   string `yaml:"table"`

	// Content is the store's bytes, inline. Plain strings pass through
	// as-is; binary stores go in as a !!binary scalar.
	Content base64marshall.Bytes `yaml:"content"`
}

type GridServer struct {
	ID        string   `yaml:"id"`
	Libraries []string `yaml:"libraries"`
	Stores    []Store  `yaml:"stores,omitempty"`
}

type Definition struct {
	Name            string   `yaml:"name"`
	Description     string   `yaml:"description,omitempty"`
	Projects        []string `yaml:"projects"`
	GridServerID    string   `yaml:"gridServerId"`
	DataLibrary     string   `yaml:"dataLibrary"`
	DataPrefix      string   `yaml:"dataPrefix"`
	ScoreRequired   bool     `yaml:"scoreExecutionRequired,omitempty"`
	InputVariables  []string `yaml:"inputVariables,omitempty"`
	OutputVariables []string `yaml:"outputVariables,omitempty"`
}

type Config struct {
	Port        string `yaml:"port"`
	TokenSecret string `yaml:"tokenSecret"`

	// TokenTTL is the issued tokens' lifetime in seconds.
	TokenTTL int `yaml:"tokenTTL"`

	Accounts []Account `yaml:"accounts"`

	// SettleAfter is how many times a publish job is polled before it
	// settles.
	SettleAfter int `yaml:"settleAfter"`

	Automation bool `yaml:"automation"`

	Repositories []Repository  `yaml:"repositories"`
	Destinations []Destination `yaml:"destinations"`
	GridServers  []GridServer  `yaml:"gridServers"`

	// Definitions may name projects that do not exist yet; a project
	// registered later under that name is covered from then on.
	Definitions []Definition `yaml:"performanceDefinitions"`
}

func (c *Config) Verify() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.TokenSecret == "" {
		return fmt.Errorf("tokenSecret is required")
	}
	if len(c.Accounts) == 0 {
		return fmt.Errorf("at least one account is required")
	}
	for _, a := range c.Accounts {
		if a.User == "" {
			return fmt.Errorf("account without user")
		}
	}
	for _, d := range c.Destinations {
		switch d.Type {
		case publish.DestinationTypeMAS, publish.DestinationTypeGrid:
		default:
			return fmt.Errorf("destination %q: unknown type %q", d.Name, d.Type)
		}
	}
	return nil
}

// Seed converts the configuration into the emulator's initial state.
func (c *Config) Seed() sandbox.Seed {
	return sandbox.Seed{
		Accounts: utils.Map(c.Accounts, func(a Account) sandbox.Account {
			return sandbox.Account{User: a.User, Password: a.Password}
		}),
		Repositories: utils.Map(c.Repositories, func(r Repository) sandbox.SeedRepository {
			return sandbox.SeedRepository{
				Name: r.Name, Description: r.Description, Default: r.Default,
			}
		}),
		Destinations: utils.Map(c.Destinations, func(d Destination) publish.Destination {
			return publish.Destination{
				Name:         d.Name,
				Type:         d.Type,
				Description:  d.Description,
				GridServerID: d.GridServerID,
				GridLibrary:  d.GridLibrary,
			}
		}),
		GridServers: utils.Map(c.GridServers, func(g GridServer) sandbox.SeedGridServer {
			return sandbox.SeedGridServer{
				ID:        g.ID,
				Libraries: g.Libraries,
				Stores: utils.Map(g.Stores, func(st Store) sandbox.SeedStore {
					return sandbox.SeedStore{
						Library: st.Library,
						Table:   st.Table,
						Content: st.Content.Bytes(),
					}
				}),
			}
		}),
		Definitions: utils.Map(c.Definitions, func(d Definition) sandbox.SeedDefinition {
			return sandbox.SeedDefinition{
				Name:            d.Name,
				Description:     d.Description,
				ProjectNames:    d.Projects,
				GridServerID:    d.GridServerID,
				DataLibrary:     d.DataLibrary,
				DataPrefix:      d.DataPrefix,
				ScoreRequired:   d.ScoreRequired,
				InputVariables:  d.InputVariables,
				OutputVariables: d.OutputVariables,
			}
		}),
		Automation:  c.Automation,
		SettleAfter: c.SettleAfter,
	}
}

// Default is a runnable configuration for development: one account
// (miller / grist), a default repository, a micro-analytic and a
// compute-grid destination, and one grid server.
func Default() *Config {
	return &Config{
		Port:        "8080",
		TokenSecret: "millbox-insecure-dev-secret",
		TokenTTL:    3600,
		Accounts:    []Account{{User: "miller", Password: "grist"}},
		SettleAfter: 1,
		Automation:  true,
		Repositories: []Repository{
			{Name: "Public", Description: "default model repository", Default: true},
		},
		Destinations: []Destination{
			{Name: "maslocal", Type: publish.DestinationTypeMAS},
			{
				Name:         "grid-models",
				Type:         publish.DestinationTypeGrid,
				GridServerID: "grid-shared",
				GridLibrary:  "ModelStore",
			},
		},
		GridServers: []GridServer{
			{
				ID:        "grid-shared",
				Libraries: []string{"Public", "ModelStore", "ModelPerformanceData"},
			},
		},
	}
}

// LoadConfig reads a configuration file. An empty path yields the
// default configuration.
func LoadConfig(filepath string) (*Config, error) {
	if filepath == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}
	return Unmarshal(content)
}

func Unmarshal(conf []byte) (*Config, error) {
	out := Default()
	if err := yaml.Unmarshal(conf, out); err != nil {
		return nil, err
	}
	if err := out.Verify(); err != nil {
		return nil, err
	}
	return out, nil
}
