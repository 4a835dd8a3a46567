// Package lifecycle drives models through the platform: staging data
// onto the compute grid, searching for models over it, registering
// models in the model repository, publishing them to scoring
// destinations and feeding their performance monitoring.
//
// Every flow works through Clients, a bundle of the platform service
// clients, so each of them can be swapped for a stub.
package lifecycle

import (
	"github.com/modelmill/modelmill/pkg/rest"
)

// DefaultGridServer is the compute grid server used when no option
// names one.
const DefaultGridServer = "grid-shared"

// DefaultLibrary is the grid library used when no option names one.
const DefaultLibrary = "public"

// Clients bundles the platform service clients the flows work through.
type Clients struct {
	Repository  rest.Repository
	Management  rest.Management
	Publisher   rest.Publisher
	MAS         rest.MAS
	Pipelines   rest.Pipelines
	DataSources rest.DataSources

	// Grid opens a direct connection to one grid server's HTTP
	// endpoint.
	Grid func(serverID string) (rest.Grid, error)
}

// NewClients builds the service clients on one authenticated session.
func NewClients(s *rest.Session) Clients {
	return Clients{
		Repository:  rest.NewRepository(s),
		Management:  rest.NewManagement(s),
		Publisher:   rest.NewPublisher(s),
		MAS:         rest.NewMAS(s),
		Pipelines:   rest.NewPipelines(s),
		DataSources: rest.NewDataSources(s),
		Grid: func(serverID string) (rest.Grid, error) {
			return s.Grid(serverID)
		},
	}
}
