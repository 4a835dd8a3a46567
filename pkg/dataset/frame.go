// Package dataset holds a small in-memory tabular value.
//
// A Frame carries just enough structure to stage data to the compute
// grid and to derive variable descriptors for model registration. All
// substantive computation over the data happens remotely.
package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/utils"
)

// Type of a column.
type Type string

const (
	String  Type = "string"
	Decimal Type = "decimal"
	Integer Type = "integer"
)

// Column declares a named, typed column.
type Column struct {
	Name string
	Type Type
}

// Frame is an ordered collection of columns with rows of cells.
type Frame struct {
	columns []Column
	rows    [][]string
}

// NewFrame builds an empty Frame with the given columns.
func NewFrame(columns ...Column) *Frame {
	return &Frame{columns: columns}
}

// Append adds a row. The number of cells must match the columns.
func (f *Frame) Append(cells ...string) error {
	if len(cells) != len(f.columns) {
		return fmt.Errorf(
			"row width mismatch: %d cells for %d columns",
			len(cells), len(f.columns),
		)
	}
	f.rows = append(f.rows, cells)
	return nil
}

// Columns lists the column declarations, in order.
func (f *Frame) Columns() []Column {
	return f.columns
}

// ColumnNames lists the column names, in order.
func (f *Frame) ColumnNames() []string {
	return utils.Map(f.columns, func(c Column) string { return c.Name })
}

// HasColumn answers whether a column with the name exists.
func (f *Frame) HasColumn(name string) bool {
	_, ok := utils.First(f.columns, func(c Column) bool { return c.Name == name })
	return ok
}

// Len counts rows.
func (f *Frame) Len() int {
	return len(f.rows)
}

// Row returns the nth row.
func (f *Frame) Row(nth int) []string {
	return f.rows[nth]
}

// WriteCSV serializes the frame as CSV, header first.
func (f *Frame) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(f.ColumnNames()); err != nil {
		return err
	}
	for _, row := range f.rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Variables derives variable descriptors from the columns,
// all tagged with the given role.
func (f *Frame) Variables(role string) []models.Variable {
	return utils.Map(f.columns, func(c Column) models.Variable {
		v := models.Variable{Name: c.Name, Role: role}
		switch c.Type {
		case Decimal:
			v.Type = models.VariableTypeDecimal
			v.Level = "interval"
		case Integer:
			v.Type = models.VariableTypeInteger
			v.Level = "interval"
		default:
			v.Type = models.VariableTypeString
			v.Level = "nominal"
			v.Length = f.maxWidth(c.Name)
		}
		return v
	})
}

func (f *Frame) maxWidth(column string) int {
	nth := -1
	for i, c := range f.columns {
		if c.Name == column {
			nth = i
			break
		}
	}
	if nth < 0 {
		return 0
	}

	width := 8 // default when no rows tell better
	for _, row := range f.rows {
		if l := len([]rune(row[nth])); width < l {
			width = l
		}
	}
	return width
}

// ReadCSV parses CSV (header first) into a Frame, sniffing column
// types from cell values: a column where every cell parses as an
// integer is Integer, where every cell parses as a number is Decimal,
// anything else is String.
func ReadCSV(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv has no header")
	}

	header, rows := records[0], records[1:]
	columns := make([]Column, len(header))
	for nth, name := range header {
		columns[nth] = Column{Name: name, Type: sniffType(rows, nth)}
	}

	f := NewFrame(columns...)
	for _, row := range rows {
		if err := f.Append(row...); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func sniffType(rows [][]string, nth int) Type {
	if len(rows) == 0 {
		return String
	}

	t := Integer
	for _, row := range rows {
		cell := row[nth]
		if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			t = Decimal
			continue
		}
		return String
	}
	return t
}
