package rest

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/modelmill/modelmill/pkg/api/types/resources"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/utils"
	mio "github.com/modelmill/modelmill/pkg/utils/io"
)

// Grid is a synchronous-execution session against one compute grid
// server, connecting to the grid's own HTTP endpoint directly.
type Grid interface {
	// UploadTable loads CSV content as a table into a library.
	UploadTable(
		ctx context.Context, content io.Reader, name string, library string,
		opts ...UploadOption,
	) (*tables.Ref, error)

	// ListTables lists the names of the tables in a library.
	ListTables(ctx context.Context, library string) ([]string, error)

	// TableInfo describes a table. Absence wraps ErrNotFound.
	TableInfo(ctx context.Context, name string, library string) (*tables.Info, error)

	// DownloadStore fetches the analytic store held in a table, as the
	// opaque binary unit the analytics toolchain wrote.
	DownloadStore(ctx context.Context, name string, library string) ([]byte, error)
}

type gridConfig struct {
	verify bool
	cacert string
}

// GridOption adjusts how a grid connection is made.
type GridOption func(*gridConfig) *gridConfig

// GridVerify overrides TLS certificate verification for this grid
// connection only. The session it derives from keeps its own setting.
func GridVerify(verify bool) GridOption {
	return func(c *gridConfig) *gridConfig {
		c.verify = verify
		return c
	}
}

// Grid opens a connection to one grid server's HTTP endpoint.
//
// The connection gets an HTTP client of its own: certificate-handling
// options scoped to it never touch the session.
func (s *Session) Grid(serverID string, opts ...GridOption) (Grid, error) {
	conf := utils.ApplyAll(
		&gridConfig{verify: s.verify, cacert: s.cacert},
		opts...,
	)

	httpclient, err := newHTTPClient(conf.cacert, !conf.verify)
	if err != nil {
		return nil, err
	}

	return &gridSession{
		httpclient: httpclient,
		base:       s.URL(serverID + "-http"),
		user:       s.user,
		password:   s.password,
	}, nil
}

type gridSession struct {
	httpclient *http.Client
	base       string
	user       string
	password   string
}

func (g *gridSession) url(path ...string) string {
	return strings.Join(append([]string{g.base}, path...), "/")
}

func (g *gridSession) do(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(g.user, g.password)
	return g.httpclient.Do(req)
}

type uploadConfig struct {
	promote bool
}

// UploadOption adjusts a table upload.
type UploadOption func(*uploadConfig) *uploadConfig

// Promote makes the uploaded table visible across grid sessions.
func Promote() UploadOption {
	return func(c *uploadConfig) *uploadConfig {
		c.promote = true
		return c
	}
}

func (g *gridSession) UploadTable(
	ctx context.Context, content io.Reader, name string, library string,
	opts ...UploadOption,
) (*tables.Ref, error) {
	conf := utils.ApplyAll(&uploadConfig{}, opts...)

	chr := mio.NewMD5Reader(content)
	treader := mio.NewTriggerReader(chr)
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPut, g.url("tables", library, name), treader,
	)
	if err != nil {
		return nil, err
	}
	treader.OnEnd(func() {
		req.Trailer.Add("x-checksum-md5", hex.EncodeToString(chr.Sum()))
	})

	req.Trailer = http.Header{}
	req.Header.Set("Content-Type", "text/csv")
	req.Header.Add("Transfer-Encoding", "chunked")
	req.Header.Add("Trailer", "x-checksum-md5")
	q := req.URL.Query()
	q.Set("promote", strconv.FormatBool(conf.promote))
	req.URL.RawQuery = q.Encode()

	resp, err := g.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	ref := tables.Ref{}
	if err := unmarshalJsonResponse(resp, &ref, MessageFor{
		Status4xx: "cannot upload table to grid",
		Status5xx: "compute grid failed",
	}); err != nil {
		return nil, err
	}
	return &ref, nil
}

func (g *gridSession) ListTables(ctx context.Context, library string) ([]string, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, g.url("tables", library), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	names := resources.List[string]{}
	if err := unmarshalJsonResponse(resp, &names, MessageFor{
		Status4xx: "cannot list grid tables",
		Status5xx: "compute grid failed",
	}); err != nil {
		return nil, err
	}
	return names.Items, nil
}

func (g *gridSession) TableInfo(ctx context.Context, name string, library string) (*tables.Info, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, g.url("tables", library, name), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf(
			"%w: table %q in library %q", ErrNotFound, name, library,
		)
	}

	info := tables.Info{}
	if err := unmarshalJsonResponse(resp, &info, MessageFor{
		Status4xx: "cannot read grid table",
		Status5xx: "compute grid failed",
	}); err != nil {
		return nil, err
	}
	return &info, nil
}

func (g *gridSession) DownloadStore(ctx context.Context, name string, library string) ([]byte, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodGet, g.url("stores", library, name), nil,
	)
	if err != nil {
		return nil, err
	}
	resp, err := g.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf(
			"%w: analytic store %q in library %q", ErrNotFound, name, library,
		)
	}
	if StatusCodeRangeOf(resp) > Status2xx {
		return nil, errorFromResponse(resp, MessageFor{
			Status4xx: "cannot download analytic store",
			Status5xx: "compute grid failed",
		})
	}

	chr := mio.NewMD5Reader(resp.Body)
	content, err := io.ReadAll(chr)
	if err != nil {
		return nil, err
	}

	// resp.Trailer is filled once the body has been read out.
	md5hash := resp.Trailer.Get("x-checksum-md5")
	if md5hash != "" && md5hash != hex.EncodeToString(chr.Sum()) {
		return nil, fmt.Errorf(
			"download may be broken: checksum mismatch for store %q in library %q",
			name, library,
		)
	}
	return content, nil
}
