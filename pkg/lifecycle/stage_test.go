package lifecycle_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/dataset"
	"github.com/modelmill/modelmill/pkg/lifecycle"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/rest/mock"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

func TestStage_TableSource(t *testing.T) {
	t.Run("it resolves the table without uploading anything", func(t *testing.T) {
		ctx := context.Background()

		datasources := mock.NewDataSources(t)
		resolved := tables.Ref{
			Name: "BANK", Library: "risk", ServerID: "grid-edge",
			URI: "/dataTables/grid~grid-edge~risk/tables/BANK",
		}
		datasources.Impl.ResolveTable = func(context.Context, tables.Ref) (*tables.Ref, error) {
			return &resolved, nil
		}

		c := lifecycle.Clients{
			DataSources: datasources,
			Grid: func(serverID string) (rest.Grid, error) {
				t.Fatal("no grid connection should be opened")
				return nil, nil
			},
		}

		actual := try.To(lifecycle.Stage(ctx, c, lifecycle.TableSource{
			Table: tables.Ref{Name: "BANK", Library: "risk", ServerID: "grid-edge"},
		})).OrFatal(t)

		if !actual.Equal(&resolved) {
			t.Errorf("unexpected table: %+v", actual)
		}
		if len(datasources.Calls.ResolveTable) != 1 {
			t.Fatalf("ResolveTable: unexpected calls: %d", len(datasources.Calls.ResolveTable))
		}
	})

	t.Run("when server and library are not set, the defaults fill them", func(t *testing.T) {
		ctx := context.Background()

		datasources := mock.NewDataSources(t)
		datasources.Impl.ResolveTable = func(_ context.Context, ref tables.Ref) (*tables.Ref, error) {
			ref.URI = "/dataTables/tables/" + ref.Name
			return &ref, nil
		}

		c := lifecycle.Clients{DataSources: datasources}

		try.To(lifecycle.Stage(ctx, c, lifecycle.TableSource{
			Table: tables.Ref{Name: "BANK"},
		})).OrFatal(t)

		requested := datasources.Calls.ResolveTable[0]
		if requested.ServerID != lifecycle.DefaultGridServer {
			t.Errorf("unexpected server: %s", requested.ServerID)
		}
		if requested.Library != lifecycle.DefaultLibrary {
			t.Errorf("unexpected library: %s", requested.Library)
		}
	})
}

func TestStage_FrameSource(t *testing.T) {
	t.Run("when no table name is given, it denies staging", func(t *testing.T) {
		ctx := context.Background()

		frame := dataset.NewFrame(dataset.Column{Name: "age", Type: dataset.Integer})

		c := lifecycle.Clients{
			Grid: func(string) (rest.Grid, error) {
				t.Fatal("no grid connection should be opened")
				return nil, nil
			},
		}

		if _, err := lifecycle.Stage(ctx, c, lifecycle.FrameSource{Frame: frame}); err == nil {
			t.Error("staging a nameless frame should fail")
		}
	})

	t.Run("it uploads the frame as CSV and resolves the table", func(t *testing.T) {
		ctx := context.Background()

		frame := dataset.NewFrame(
			dataset.Column{Name: "age", Type: dataset.Integer},
			dataset.Column{Name: "income", Type: dataset.Decimal},
		)
		if err := frame.Append("39", "1024.5"); err != nil {
			t.Fatal(err)
		}

		grid := mock.NewGrid(t)
		grid.Impl.UploadTable = func(_ context.Context, _ []byte, name string, library string) (*tables.Ref, error) {
			return &tables.Ref{Name: name, Library: library}, nil
		}

		datasources := mock.NewDataSources(t)
		datasources.Impl.ResolveTable = func(_ context.Context, ref tables.Ref) (*tables.Ref, error) {
			ref.URI = "/dataTables/tables/" + ref.Name
			return &ref, nil
		}

		c := lifecycle.Clients{
			DataSources: datasources,
			Grid: func(serverID string) (rest.Grid, error) {
				if serverID != lifecycle.DefaultGridServer {
					t.Errorf("unexpected grid server: %s", serverID)
				}
				return grid, nil
			},
		}

		actual := try.To(lifecycle.Stage(
			ctx, c, lifecycle.FrameSource{Frame: frame, TableName: "SCORES"},
		)).OrFatal(t)

		if len(grid.Calls.UploadTable) != 1 {
			t.Fatal("the frame should be uploaded once")
		}
		uploaded := grid.Calls.UploadTable[0]
		if uploaded.Name != "SCORES" || uploaded.Library != lifecycle.DefaultLibrary {
			t.Errorf("uploaded to an unexpected place: %+v", uploaded)
		}
		if string(uploaded.Content) != "age,income\n39,1024.5\n" {
			t.Errorf("unexpected upload payload: %q", string(uploaded.Content))
		}
		if actual.URI == "" {
			t.Error("the staged table should be resolved into an URI")
		}
	})

	t.Run("staging options move the upload elsewhere", func(t *testing.T) {
		ctx := context.Background()

		frame := dataset.NewFrame(dataset.Column{Name: "age", Type: dataset.Integer})

		grid := mock.NewGrid(t)
		grid.Impl.UploadTable = func(_ context.Context, _ []byte, name string, library string) (*tables.Ref, error) {
			return &tables.Ref{Name: name, Library: library, ServerID: "grid-edge"}, nil
		}

		datasources := mock.NewDataSources(t)
		datasources.Impl.ResolveTable = func(_ context.Context, ref tables.Ref) (*tables.Ref, error) {
			return &ref, nil
		}

		servers := []string{}
		c := lifecycle.Clients{
			DataSources: datasources,
			Grid: func(serverID string) (rest.Grid, error) {
				servers = append(servers, serverID)
				return grid, nil
			},
		}

		try.To(lifecycle.Stage(
			ctx, c, lifecycle.FrameSource{Frame: frame, TableName: "SCORES"},
			lifecycle.WithGridServer("grid-edge"), lifecycle.WithLibrary("risk"),
		)).OrFatal(t)

		if len(servers) != 1 || servers[0] != "grid-edge" {
			t.Errorf("unexpected grid servers: %v", servers)
		}
		if uploaded := grid.Calls.UploadTable[0]; uploaded.Library != "risk" {
			t.Errorf("unexpected library: %s", uploaded.Library)
		}
	})
}

func TestStage_PathSource(t *testing.T) {
	t.Run("it uploads the file under its name without the extension", func(t *testing.T) {
		ctx := context.Background()

		path := filepath.Join(t.TempDir(), "q3_scores.csv")
		if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		grid := mock.NewGrid(t)
		grid.Impl.UploadTable = func(_ context.Context, _ []byte, name string, library string) (*tables.Ref, error) {
			return &tables.Ref{Name: name, Library: library}, nil
		}

		datasources := mock.NewDataSources(t)
		datasources.Impl.ResolveTable = func(_ context.Context, ref tables.Ref) (*tables.Ref, error) {
			return &ref, nil
		}

		c := lifecycle.Clients{
			DataSources: datasources,
			Grid:        func(string) (rest.Grid, error) { return grid, nil },
		}

		try.To(lifecycle.Stage(ctx, c, lifecycle.PathSource{Path: path})).OrFatal(t)

		uploaded := grid.Calls.UploadTable[0]
		if uploaded.Name != "q3_scores" {
			t.Errorf("unexpected table name: %s", uploaded.Name)
		}
		if string(uploaded.Content) != "a,b\n1,2\n" {
			t.Errorf("unexpected upload payload: %q", string(uploaded.Content))
		}
	})

	t.Run("a given table name wins over the file name", func(t *testing.T) {
		ctx := context.Background()

		path := filepath.Join(t.TempDir(), "q3_scores.csv")
		if err := os.WriteFile(path, []byte("a\n1\n"), 0o644); err != nil {
			t.Fatal(err)
		}

		grid := mock.NewGrid(t)
		grid.Impl.UploadTable = func(_ context.Context, _ []byte, name string, library string) (*tables.Ref, error) {
			return &tables.Ref{Name: name, Library: library}, nil
		}
		datasources := mock.NewDataSources(t)
		datasources.Impl.ResolveTable = func(_ context.Context, ref tables.Ref) (*tables.Ref, error) {
			return &ref, nil
		}
		c := lifecycle.Clients{
			DataSources: datasources,
			Grid:        func(string) (rest.Grid, error) { return grid, nil },
		}

		try.To(lifecycle.Stage(
			ctx, c, lifecycle.PathSource{Path: path, TableName: "SCORES"},
		)).OrFatal(t)

		if uploaded := grid.Calls.UploadTable[0]; uploaded.Name != "SCORES" {
			t.Errorf("unexpected table name: %s", uploaded.Name)
		}
	})

	t.Run("when the file does not exist, it denies staging", func(t *testing.T) {
		ctx := context.Background()

		c := lifecycle.Clients{
			Grid: func(string) (rest.Grid, error) {
				t.Fatal("no grid connection should be opened")
				return nil, nil
			},
		}

		path := filepath.Join(t.TempDir(), "no-such-file.csv")
		if _, err := lifecycle.Stage(ctx, c, lifecycle.PathSource{Path: path}); err == nil {
			t.Error("staging a missing file should fail")
		}
	})
}

func TestStage_NoSource(t *testing.T) {
	t.Run("when no source is given, it denies staging", func(t *testing.T) {
		ctx := context.Background()
		if _, err := lifecycle.Stage(ctx, lifecycle.Clients{}, nil); err == nil {
			t.Error("staging nothing should fail")
		}
	})
}
