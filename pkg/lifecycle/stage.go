package lifecycle

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/utils"
)

type stageConfig struct {
	serverID string
	library  string
}

// StageOption adjusts where data is staged.
type StageOption func(*stageConfig) *stageConfig

// WithGridServer stages onto the named grid server instead of
// DefaultGridServer.
func WithGridServer(serverID string) StageOption {
	return func(c *stageConfig) *stageConfig {
		c.serverID = serverID
		return c
	}
}

// WithLibrary stages into the named library instead of DefaultLibrary.
func WithLibrary(library string) StageOption {
	return func(c *stageConfig) *stageConfig {
		c.library = library
		return c
	}
}

// Stage makes a data source resident on the compute grid and resolves
// it into the canonical table reference other platform services
// accept.
//
// Already-resident tables are only resolved. Files and frames are
// uploaded first, promoted so that later platform jobs see them; a
// file's table name defaults to the file name without its extension.
func Stage(
	ctx context.Context, c Clients, source DataSource, opts ...StageOption,
) (*tables.Ref, error) {
	if source == nil {
		return nil, fmt.Errorf("no data source to stage")
	}

	conf := utils.ApplyAll(
		&stageConfig{serverID: DefaultGridServer, library: DefaultLibrary},
		opts...,
	)

	switch src := source.(type) {
	case TableSource:
		ref := src.Table
		if ref.ServerID == "" {
			ref.ServerID = conf.serverID
		}
		if ref.Library == "" {
			ref.Library = conf.library
		}
		return c.DataSources.ResolveTable(ctx, ref)

	case FrameSource:
		if src.TableName == "" {
			return nil, fmt.Errorf("a table name is required to stage an in-memory frame")
		}
		buf := bytes.Buffer{}
		if err := src.Frame.WriteCSV(&buf); err != nil {
			return nil, err
		}
		return uploadAndResolve(ctx, c, &buf, src.TableName, conf)

	case PathSource:
		name := src.TableName
		if name == "" {
			base := filepath.Base(src.Path)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		f, err := os.Open(src.Path)
		if err != nil {
			return nil, fmt.Errorf("cannot read data file: %w", err)
		}
		defer f.Close()
		return uploadAndResolve(ctx, c, f, name, conf)

	default:
		return nil, fmt.Errorf("unsupported data source %T", source)
	}
}

func uploadAndResolve(
	ctx context.Context, c Clients, content io.Reader, name string, conf *stageConfig,
) (*tables.Ref, error) {
	grid, err := c.Grid(conf.serverID)
	if err != nil {
		return nil, err
	}
	ref, err := grid.UploadTable(ctx, content, name, conf.library, rest.Promote())
	if err != nil {
		return nil, err
	}
	if ref.ServerID == "" {
		ref.ServerID = conf.serverID
	}
	return c.DataSources.ResolveTable(ctx, *ref)
}
