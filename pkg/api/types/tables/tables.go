// Package tables holds representations of tables on the compute grid.
package tables

import (
	"github.com/modelmill/modelmill/pkg/utils/cmp"
)

// Ref points at a table resident on the compute grid.
type Ref struct {
	Name     string `json:"name"`
	Library  string `json:"library"`
	ServerID string `json:"serverId,omitempty"`

	// URI is the canonical data-table URI other services accept,
	// resolved by the data-sources service.
	URI string `json:"uri,omitempty"`
}

func (r *Ref) Equal(o *Ref) bool {
	if r == nil || o == nil {
		return r == nil && o == nil
	}
	return *r == *o
}

// Info describes a grid table's shape.
type Info struct {
	Name    string   `json:"name"`
	Library string   `json:"library"`
	Rows    int      `json:"rowCount"`
	Columns []string `json:"columnNames"`
}

func (i *Info) Equal(o *Info) bool {
	if i == nil || o == nil {
		return i == nil && o == nil
	}
	return i.Name == o.Name &&
		i.Library == o.Library &&
		i.Rows == o.Rows &&
		cmp.SliceEq(i.Columns, o.Columns)
}
