package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	httptestutil "github.com/modelmill/modelmill/internal/testutils/http"
	"github.com/modelmill/modelmill/pkg/api/types/tables"
	"github.com/modelmill/modelmill/pkg/utils/try"

	"github.com/modelmill/modelmill/cmd/millbox/handlers"
)

func TestResolveTableHandler(t *testing.T) {
	t.Run("a grid table resolves to its canonical ref", func(t *testing.T) {
		box := newBox()
		try.To(box.GridUpload(
			"grid-shared", "Public", "train", []byte("age\n39\n"), true,
		)).OrFatal(t)

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/dataTables/grid~grid-shared~Public/tables/train")
		c.SetPath("/dataTables/:source/tables/:tableName")
		c.SetParamNames("source", "tableName")
		c.SetParamValues("grid~grid-shared~Public", "train")

		testee := handlers.ResolveTableHandler(box, "source", "tableName")
		if err := testee(c); err != nil {
			t.Fatal(err)
		}

		ref := tables.Ref{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &ref); err != nil {
			t.Fatal(err)
		}
		if ref.URI != "/dataTables/grid~grid-shared~Public/tables/train" {
			t.Errorf("unexpected ref: %+v", ref)
		}
	})

	t.Run("malformed sources are answered 400", func(t *testing.T) {
		box := newBox()
		e := echo.New()
		c, _ := httptestutil.Get(e, "/dataTables/warehouse~Public/tables/train")
		c.SetPath("/dataTables/:source/tables/:tableName")
		c.SetParamNames("source", "tableName")
		c.SetParamValues("warehouse~Public", "train")

		err := handlers.ResolveTableHandler(box, "source", "tableName")(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("the error is not an echo.HTTPError: %+v", err)
		}
		if echoErr.Code != http.StatusBadRequest {
			t.Errorf("unexpected status code: %d", echoErr.Code)
		}
	})

	t.Run("unknown tables are answered 404", func(t *testing.T) {
		box := newBox()
		e := echo.New()
		c, _ := httptestutil.Get(e, "/dataTables/grid~grid-shared~Public/tables/nowhere")
		c.SetPath("/dataTables/:source/tables/:tableName")
		c.SetParamNames("source", "tableName")
		c.SetParamValues("grid~grid-shared~Public", "nowhere")

		err := handlers.ResolveTableHandler(box, "source", "tableName")(c)

		var echoErr *echo.HTTPError
		if !errors.As(err, &echoErr) {
			t.Fatalf("the error is not an echo.HTTPError: %+v", err)
		}
		if echoErr.Code != http.StatusNotFound {
			t.Errorf("unexpected status code: %d", echoErr.Code)
		}
	})
}
