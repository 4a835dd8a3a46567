package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/modelmill/modelmill/pkg/api/types/tables"
)

// DataSources is the client of the data-sources service, which indexes
// tables resident on compute grids.
type DataSources interface {
	// ResolveTable resolves a grid table into its canonical data-table
	// reference, URI included. Absence wraps ErrNotFound.
	ResolveTable(ctx context.Context, ref tables.Ref) (*tables.Ref, error)
}

type dataSourcesClient struct {
	session *Session
}

// NewDataSources builds the data-sources client on a session.
func NewDataSources(s *Session) DataSources {
	return &dataSourcesClient{session: s}
}

// SourceID names a grid library as a data source.
func SourceID(serverID string, library string) string {
	return fmt.Sprintf("grid~%s~%s", serverID, library)
}

func (c *dataSourcesClient) ResolveTable(ctx context.Context, ref tables.Ref) (*tables.Ref, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet,
		c.session.URL("dataTables", SourceID(ref.ServerID, ref.Library), "tables", ref.Name),
		nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := c.session.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf(
			"%w: table %q in library %q", ErrNotFound, ref.Name, ref.Library,
		)
	}

	resolved := tables.Ref{}
	if err := unmarshalJsonResponse(resp, &resolved, MessageFor{
		Status4xx: "cannot resolve data table",
		Status5xx: "data-sources service failed",
	}); err != nil {
		return nil, err
	}
	return &resolved, nil
}
