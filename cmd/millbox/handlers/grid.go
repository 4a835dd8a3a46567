package handlers

import (
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/modelmill/modelmill/internal/sandbox"
	apierr "github.com/modelmill/modelmill/pkg/api/types/errors"
	"github.com/modelmill/modelmill/pkg/api/types/resources"
	mio "github.com/modelmill/modelmill/pkg/utils/io"
)

// gridServerOf reads the grid server id out of the per-server path
// prefix "{serverID}-http". An unknown server is reported as absent,
// like an endpoint that is not listening.
func gridServerOf(box *sandbox.Sandbox, c echo.Context, paramKey string) (string, error) {
	prefix := c.Param(paramKey)
	serverID, ok := strings.CutSuffix(prefix, "-http")
	if !ok {
		return "", apierr.NotFound()
	}
	if !box.HasGridServer(serverID) {
		return "", apierr.NotFound()
	}
	return serverID, nil
}

func UploadGridTableHandler(box *sandbox.Sandbox, serverKey, libraryKey, tableKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		serverID, err := gridServerOf(box, c, serverKey)
		if err != nil {
			return err
		}

		chr := mio.NewMD5Reader(c.Request().Body)
		content, err := io.ReadAll(chr)
		if err != nil {
			return apierr.InternalServerError(err)
		}

		md5hash := c.Request().Trailer.Get("x-checksum-md5")
		if md5hash != "" && md5hash != hex.EncodeToString(chr.Sum()) {
			return apierr.NewErrorMessage(http.StatusBadRequest, "hash is not match.")
		}

		promote, _ := strconv.ParseBool(c.QueryParam("promote"))

		ref, err := box.GridUpload(
			serverID, c.Param(libraryKey), c.Param(tableKey), content, promote,
		)
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusCreated, ref)
	}
}

func ListGridTablesHandler(box *sandbox.Sandbox, serverKey, libraryKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		serverID, err := gridServerOf(box, c, serverKey)
		if err != nil {
			return err
		}

		names, err := box.GridTables(serverID, c.Param(libraryKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, resources.List[string]{
			Items: names, Count: len(names),
		})
	}
}

func GetGridTableHandler(box *sandbox.Sandbox, serverKey, libraryKey, tableKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		serverID, err := gridServerOf(box, c, serverKey)
		if err != nil {
			return err
		}

		info, err := box.GridTable(serverID, c.Param(libraryKey), c.Param(tableKey))
		if err != nil {
			return asAPIError(err)
		}
		return c.JSON(http.StatusOK, info)
	}
}

func DownloadGridStoreHandler(box *sandbox.Sandbox, serverKey, libraryKey, tableKey string) echo.HandlerFunc {
	return func(c echo.Context) error {
		serverID, err := gridServerOf(box, c, serverKey)
		if err != nil {
			return err
		}

		store, err := box.GridStore(serverID, c.Param(libraryKey), c.Param(tableKey))
		if err != nil {
			return asAPIError(err)
		}

		resp := c.Response()
		chw := mio.NewMD5Writer(resp.Writer)
		resp.Header().Add("Trailer", "x-checksum-md5")
		resp.Header().Add("Content-Type", "application/octet-stream")
		if _, err := chw.Write(store); err != nil {
			return err
		}
		resp.Header().Add("x-checksum-md5", hex.EncodeToString(chw.Sum()))
		return nil
	}
}
