package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/modelmill/modelmill/pkg/api/types/models"
	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/api/types/repositories"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/utils/cmp"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

func TestRepository_GetProject(t *testing.T) {
	t.Run("it reads a project by name", func(t *testing.T) {
		want := projects.Project{
			ID: "proj-1", Name: "churn", Function: "classification",
			TargetLevel: "Binary", RepositoryID: "repo-1",
		}

		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/modelRepository/projects/churn" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(want)
		}))

		testee := rest.NewRepository(session)
		got := try.To(testee.GetProject(context.Background(), "churn")).OrFatal(t)
		if !got.Equal(&want) {
			t.Errorf("unexpected project: %+v", got)
		}
	})

	t.Run("absence wraps ErrNotFound", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		testee := rest.NewRepository(session)
		if _, err := testee.GetProject(context.Background(), "no-such"); !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("a server failure becomes an APIError", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"message":"repository exploded","httpStatusCode":500}`)
		}))

		testee := rest.NewRepository(session)
		_, err := testee.GetProject(context.Background(), "churn")
		apiErr := new(rest.APIError)
		if !errors.As(err, &apiErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if apiErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("unexpected status: %d", apiErr.StatusCode)
		}
		if !strings.Contains(apiErr.Error(), "repository exploded") {
			t.Errorf("the platform message should be kept: %s", apiErr.Error())
		}
	})
}

func TestRepository_ListRepositories(t *testing.T) {
	t.Run("it lists the model stores", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/modelRepository/repositories" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[`+
				`{"id":"repo-1","name":"Public","defaultRepository":true},`+
				`{"id":"repo-2","name":"Staging"}`+
				`],"count":2}`)
		}))

		testee := rest.NewRepository(session)
		got := try.To(testee.ListRepositories(context.Background())).OrFatal(t)

		want := []repositories.Repository{
			{ID: "repo-1", Name: "Public", Default: true},
			{ID: "repo-2", Name: "Staging"},
		}
		if !cmp.SliceEqWith(got, want, func(a, b repositories.Repository) bool {
			return a.Equal(&b)
		}) {
			t.Errorf("unexpected repositories: %+v", got)
		}
	})

	t.Run("permission denied becomes an AuthorizationError", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))

		testee := rest.NewRepository(session)
		_, err := testee.ListRepositories(context.Background())
		authErr := new(rest.AuthorizationError)
		if !errors.As(err, &authErr) {
			t.Fatalf("unexpected error: %v", err)
		}
		if authErr.Endpoint != "/modelRepository/repositories" {
			t.Errorf("unexpected endpoint: %s", authErr.Endpoint)
		}
	})
}

func TestRepository_DefaultRepository(t *testing.T) {
	t.Run("it picks the store marked default", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[`+
				`{"id":"repo-2","name":"Staging"},`+
				`{"id":"repo-1","name":"Public","defaultRepository":true}`+
				`],"count":2}`)
		}))

		testee := rest.NewRepository(session)
		got := try.To(testee.DefaultRepository(context.Background())).OrFatal(t)
		if got.ID != "repo-1" {
			t.Errorf("unexpected repository: %+v", got)
		}
	})

	t.Run("no default store wraps ErrNotFound", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[{"id":"repo-2","name":"Staging"}],"count":1}`)
		}))

		testee := rest.NewRepository(session)
		if _, err := testee.DefaultRepository(context.Background()); !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestRepository_CreateModel(t *testing.T) {
	t.Run("it posts the model record and parses the created one", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/modelRepository/models" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if ctyp := r.Header.Get("Content-Type"); ctyp != "application/json" {
				t.Errorf("unexpected content type: %s", ctyp)
			}

			posted := models.Model{}
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				t.Fatal(err)
			}
			if posted.Name != "churn scorer" || posted.ProjectID != "proj-1" {
				t.Errorf("unexpected model posted: %+v", posted)
			}

			posted.ID = "model-1"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(posted)
		}))

		testee := rest.NewRepository(session)
		created := try.To(testee.CreateModel(context.Background(), models.Model{
			Name: "churn scorer", ProjectID: "proj-1",
			Function: "classification", Algorithm: "Logistic regression",
		})).OrFatal(t)

		if created.ID != "model-1" || created.Algorithm != "Logistic regression" {
			t.Errorf("unexpected model: %+v", created)
		}
	})
}

func TestRepository_AddModelContent(t *testing.T) {
	t.Run("it uploads the file as multipart form data", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/modelRepository/models/model-1/contents" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Fatal(err)
			}

			file, header, err := r.FormFile("files")
			if err != nil {
				t.Fatal(err)
			}
			defer file.Close()
			if header.Filename != "model.bin" {
				t.Errorf("unexpected file name: %s", header.Filename)
			}
			content := try.To(io.ReadAll(file)).OrFatal(t)
			if string(content) != "serialized model" {
				t.Errorf("unexpected file content: %s", content)
			}
			if got := r.FormValue("role"); got != "score" {
				t.Errorf("unexpected role: %s", got)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"content-1","name":"model.bin","role":"score","size":16}`)
		}))

		testee := rest.NewRepository(session)
		created := try.To(testee.AddModelContent(
			context.Background(), "model-1",
			"model.bin", strings.NewReader("serialized model"), "score",
		)).OrFatal(t)

		want := models.Content{ID: "content-1", Name: "model.bin", Role: "score", Size: 16}
		if *created != want {
			t.Errorf("unexpected content: %+v", created)
		}
	})
}

func TestRepository_ImportModelArchive(t *testing.T) {
	t.Run("it posts the archive with name and project", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/modelRepository/imports" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if ctyp := r.Header.Get("Content-Type"); ctyp != "application/zip" {
				t.Errorf("unexpected content type: %s", ctyp)
			}
			if got := r.URL.Query().Get("name"); got != "churn scorer" {
				t.Errorf("unexpected name: %s", got)
			}
			if got := r.URL.Query().Get("projectId"); got != "proj-1" {
				t.Errorf("unexpected projectId: %s", got)
			}
			body := try.To(io.ReadAll(r.Body)).OrFatal(t)
			if string(body) != "zip bytes" {
				t.Errorf("unexpected body: %s", body)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"model-1","name":"churn scorer","projectId":"proj-1"}`)
		}))

		testee := rest.NewRepository(session)
		imported := try.To(testee.ImportModelArchive(
			context.Background(), "churn scorer", "proj-1",
			strings.NewReader("zip bytes"),
		)).OrFatal(t)

		if imported.ID != "model-1" {
			t.Errorf("unexpected model: %+v", imported)
		}
	})
}

func TestRepository_ListModels(t *testing.T) {
	t.Run("a project id narrows the listing", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.URL.Query().Get("projectId"); got != "proj-1" {
				t.Errorf("unexpected projectId: %s", got)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[{"id":"model-1","name":"churn scorer"}],"count":1}`)
		}))

		testee := rest.NewRepository(session)
		found := try.To(testee.ListModels(context.Background(), "proj-1")).OrFatal(t)
		if len(found) != 1 || found[0].ID != "model-1" {
			t.Errorf("unexpected models: %+v", found)
		}
	})
}

func TestRepository_DeleteModelContents(t *testing.T) {
	t.Run("it deletes over the contents endpoint", func(t *testing.T) {
		deleted := false
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/modelRepository/models/model-1/contents" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		}))

		testee := rest.NewRepository(session)
		if err := testee.DeleteModelContents(context.Background(), "model-1"); err != nil {
			t.Fatal(err)
		}
		if !deleted {
			t.Error("the request should reach the server")
		}
	})
}
