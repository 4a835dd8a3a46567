package lifecycle

import (
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/dataset"
)

// DataSource is what the staging flow accepts as data: a file on
// disk, an in-memory frame, or a table already resident on the grid.
//
// The variants are closed. Each flow resolves the variant once, up
// front; every later step works on the staged table.
type DataSource interface {
	source()
}

// PathSource stages a CSV file from the local filesystem.
type PathSource struct {
	// Path of the CSV file.
	Path string

	// TableName overrides the table name derived from the file name.
	TableName string
}

// FrameSource stages an in-memory frame. A table name is required,
// there being nothing to derive one from.
type FrameSource struct {
	Frame     *dataset.Frame
	TableName string
}

// TableSource points at a table already resident on the grid.
// Staging only resolves its canonical reference.
type TableSource struct {
	Table tables.Ref
}

func (PathSource) source()  {}
func (FrameSource) source() {}
func (TableSource) source() {}
