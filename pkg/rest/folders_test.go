package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/modelmill/modelmill/pkg/api/types/folders"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/utils/cmp"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

func TestFolders_CreateFolder(t *testing.T) {
	t.Run("it posts the folder record and parses the created one", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/folders/folders" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if ctyp := r.Header.Get("Content-Type"); ctyp != "application/json" {
				t.Errorf("unexpected content type: %s", ctyp)
			}

			posted := folders.Folder{}
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				t.Fatal(err)
			}
			if posted.Name != "reports" || posted.Description != "weekly scoring" {
				t.Errorf("unexpected folder posted: %+v", posted)
			}
			if posted.ParentURI != "" {
				t.Errorf("no parent was given: %s", posted.ParentURI)
			}

			posted.ID = "folder-1"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(posted)
		}))

		testee := rest.NewFolders(session)
		created := try.To(testee.CreateFolder(
			context.Background(), "reports",
			rest.WithFolderDescription("weekly scoring"),
		)).OrFatal(t)

		if created.ID != "folder-1" || created.Name != "reports" {
			t.Errorf("unexpected folder: %+v", created)
		}
	})

	t.Run("a parent is resolved first and sent as its self uri", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/folders/folders/shared":
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"id":"folder-0","name":"shared","links":[`+
					`{"method":"GET","rel":"self","href":"/folders/folders/folder-0","uri":"/folders/folders/folder-0"}`+
					`]}`)
			case r.Method == http.MethodPost && r.URL.Path == "/folders/folders":
				posted := folders.Folder{}
				if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
					t.Fatal(err)
				}
				if posted.ParentURI != "/folders/folders/folder-0" {
					t.Errorf("unexpected parent uri: %s", posted.ParentURI)
				}
				posted.ID = "folder-1"
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				json.NewEncoder(w).Encode(posted)
			default:
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
		}))

		testee := rest.NewFolders(session)
		created := try.To(testee.CreateFolder(
			context.Background(), "reports", rest.WithParentFolder("shared"),
		)).OrFatal(t)

		if created.ParentURI != "/folders/folders/folder-0" {
			t.Errorf("unexpected folder: %+v", created)
		}
	})

	t.Run("a missing parent wraps ErrNotFound before anything is created", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				t.Error("nothing should be created")
			}
			w.WriteHeader(http.StatusNotFound)
		}))

		testee := rest.NewFolders(session)
		_, err := testee.CreateFolder(
			context.Background(), "reports", rest.WithParentFolder("no-such"),
		)
		if !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFolders_GetFolder(t *testing.T) {
	t.Run("the @myFolder shortcut passes through as is", func(t *testing.T) {
		want := folders.Folder{ID: "folder-me", Name: "My Folder"}

		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/folders/folders/@myFolder" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(want)
		}))

		testee := rest.NewFolders(session)
		got := try.To(testee.GetFolder(context.Background(), "@myFolder")).OrFatal(t)
		if !got.Equal(&want) {
			t.Errorf("unexpected folder: %+v", got)
		}
	})

	t.Run("absence wraps ErrNotFound", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		testee := rest.NewFolders(session)
		if _, err := testee.GetFolder(context.Background(), "no-such"); !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFolders_DeleteFolder(t *testing.T) {
	t.Run("it deletes by name or id", func(t *testing.T) {
		deleted := false
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodDelete {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/folders/folders/folder-1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			deleted = true
			w.WriteHeader(http.StatusNoContent)
		}))

		testee := rest.NewFolders(session)
		if err := testee.DeleteFolder(context.Background(), "folder-1"); err != nil {
			t.Fatal(err)
		}
		if !deleted {
			t.Error("the request should reach the server")
		}
	})

	t.Run("absence wraps ErrNotFound", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		testee := rest.NewFolders(session)
		if err := testee.DeleteFolder(context.Background(), "no-such"); !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestFolders_ListMembers(t *testing.T) {
	t.Run("it lists the folder's direct members", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/folders/folders/folder-1/members" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"items":[`+
				`{"id":"member-1","name":"churn scorer","uri":"/modelRepository/models/model-1","contentType":"model"},`+
				`{"id":"member-2","name":"reports","uri":"/folders/folders/folder-2","contentType":"folder"}`+
				`],"count":2}`)
		}))

		testee := rest.NewFolders(session)
		got := try.To(testee.ListMembers(context.Background(), "folder-1")).OrFatal(t)

		want := []folders.Member{
			{ID: "member-1", Name: "churn scorer", URI: "/modelRepository/models/model-1", ContentType: "model"},
			{ID: "member-2", Name: "reports", URI: "/folders/folders/folder-2", ContentType: "folder"},
		}
		if !cmp.SliceEq(got, want) {
			t.Errorf("unexpected members: %+v", got)
		}
	})
}
