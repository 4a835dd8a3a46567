package sandbox

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/utils"
)

// HasGridServer answers whether a grid server is part of the sandbox.
func (s *Sandbox) HasGridServer(serverID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.grids[serverID]
	return ok
}

func (s *Sandbox) findLibrary(serverID, library string) (map[string]*tableRecord, error) {
	srv, ok := s.grids[serverID]
	if !ok {
		return nil, missing("grid server", serverID)
	}
	lib, ok := srv.libraries[libKey(library)]
	if !ok {
		return nil, missing("library", library)
	}
	return lib, nil
}

// GridUpload loads CSV content as a table into a grid library.
func (s *Sandbox) GridUpload(
	serverID, library, name string, content []byte, promote bool,
) (tables.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.findLibrary(serverID, library)
	if err != nil {
		return tables.Ref{}, err
	}

	columns, rows, err := scanCSV(content)
	if err != nil {
		return tables.Ref{}, fmt.Errorf("table %q: %w", name, err)
	}

	lib[name] = &tableRecord{
		columns:  columns,
		rows:     rows,
		data:     content,
		promoted: promote,
	}
	return tables.Ref{Name: name, Library: library, ServerID: serverID}, nil
}

func scanCSV(content []byte) ([]string, int, error) {
	r := csv.NewReader(bytes.NewReader(content))
	columns, err := r.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("no CSV header")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("broken CSV: %w", err)
	}

	rows := 0
	for {
		if _, err := r.Read(); err == io.EOF {
			break
		} else if err != nil {
			return nil, 0, fmt.Errorf("broken CSV: %w", err)
		}
		rows++
	}
	return columns, rows, nil
}

// GridTables lists the table names in a grid library.
func (s *Sandbox) GridTables(serverID, library string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.findLibrary(serverID, library)
	if err != nil {
		return nil, err
	}
	return utils.Sorted(
		utils.KeysOf(lib), func(a, b string) bool { return a < b },
	), nil
}

// GridTable describes one table in a grid library.
func (s *Sandbox) GridTable(serverID, library, name string) (tables.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.findLibrary(serverID, library)
	if err != nil {
		return tables.Info{}, err
	}
	rec, ok := lib[name]
	if !ok {
		return tables.Info{}, missing("table", name)
	}
	return tables.Info{
		Name:    name,
		Library: library,
		Rows:    rec.rows,
		Columns: append([]string{}, rec.columns...),
	}, nil
}

// GridStore reads an analytic store held in a grid library.
func (s *Sandbox) GridStore(serverID, library, name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	srv, ok := s.grids[serverID]
	if !ok {
		return nil, missing("grid server", serverID)
	}
	store, ok := srv.stores[storeKey(library, name)]
	if !ok {
		return nil, missing("analytic store", name)
	}
	return store, nil
}

// ResolveTable answers the canonical data-table reference of a grid
// table, with the URI other services address it by.
func (s *Sandbox) ResolveTable(serverID, library, name string) (tables.Ref, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lib, err := s.findLibrary(serverID, library)
	if err != nil {
		return tables.Ref{}, err
	}
	if _, ok := lib[name]; !ok {
		return tables.Ref{}, missing("table", name)
	}

	return tables.Ref{
		Name:     name,
		Library:  library,
		ServerID: serverID,
		URI: fmt.Sprintf(
			"/dataTables/grid~%s~%s/tables/%s", serverID, library, name,
		),
	}, nil
}
