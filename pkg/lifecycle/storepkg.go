package lifecycle

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelmill/modelmill/pkg/api/types/models"
)

// Entries of a deployable model archive.
const (
	archiveStoreEntry   = "model.store"
	archivePropsEntry   = "ModelProperties.json"
	archiveInputsEntry  = "inputVar.json"
	archiveOutputsEntry = "outputVar.json"
)

// storeProperties is the metadata entry of a deployable archive.
type storeProperties struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Function    string `json:"function,omitempty"`
	Algorithm   string `json:"algorithm,omitempty"`
	TargetLevel string `json:"targetLevel,omitempty"`
	Tool        string `json:"tool,omitempty"`
}

// buildStoreArchive fetches an analytic store from its grid table and
// packages it, with its metadata, into a deployable archive the
// repository's import endpoint accepts.
func buildStoreArchive(
	ctx context.Context, c Clients, st StoreTable, name string,
) ([]byte, error) {
	serverID := st.Table.ServerID
	if serverID == "" {
		serverID = DefaultGridServer
	}
	library := st.Table.Library
	if library == "" {
		library = DefaultLibrary
	}

	grid, err := c.Grid(serverID)
	if err != nil {
		return nil, err
	}
	blob, err := grid.DownloadStore(ctx, st.Table.Name, library)
	if err != nil {
		return nil, err
	}

	props, err := json.Marshal(storeProperties{
		Name:        name,
		Description: st.Descriptor.Description,
		Function:    st.Descriptor.Function,
		Algorithm:   st.Descriptor.Algorithm,
		TargetLevel: st.Descriptor.TargetLevel,
		Tool:        st.Descriptor.Tool,
	})
	if err != nil {
		return nil, err
	}
	inputs, err := marshalVariables(st.Descriptor.InputVariables)
	if err != nil {
		return nil, err
	}
	outputs, err := marshalVariables(st.Descriptor.OutputVariables)
	if err != nil {
		return nil, err
	}

	buf := bytes.Buffer{}
	zw := zip.NewWriter(&buf)
	entries := []struct {
		name    string
		content []byte
	}{
		{archiveStoreEntry, blob},
		{archivePropsEntry, props},
		{archiveInputsEntry, inputs},
		{archiveOutputsEntry, outputs},
	}
	for _, e := range entries {
		w, err := zw.Create(e.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(e.content); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inspectStoreArchive reads the metadata back out of a deployable
// archive: enough of a descriptor to resolve the project the archive
// registers under.
func inspectStoreArchive(archive []byte) (models.Model, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return models.Model{}, fmt.Errorf("broken model archive: %w", err)
	}

	descriptor := models.Model{}
	for _, f := range zr.File {
		switch f.Name {
		case archivePropsEntry:
			props := storeProperties{}
			if err := readArchiveJSON(f, &props); err != nil {
				return models.Model{}, err
			}
			descriptor.Name = props.Name
			descriptor.Description = props.Description
			descriptor.Function = props.Function
			descriptor.Algorithm = props.Algorithm
			descriptor.TargetLevel = props.TargetLevel
			descriptor.Tool = props.Tool
		case archiveInputsEntry:
			if err := readArchiveJSON(f, &descriptor.InputVariables); err != nil {
				return models.Model{}, err
			}
		case archiveOutputsEntry:
			if err := readArchiveJSON(f, &descriptor.OutputVariables); err != nil {
				return models.Model{}, err
			}
		}
	}
	return descriptor, nil
}

func readArchiveJSON(f *zip.File, v any) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("broken model archive: %s: %w", f.Name, err)
	}
	return nil
}

func marshalVariables(vars []models.Variable) ([]byte, error) {
	if vars == nil {
		vars = []models.Variable{}
	}
	return json.Marshal(vars)
}
