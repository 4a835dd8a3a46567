package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	testutilctx "github.com/modelmill/modelmill/internal/testutils/context"
	"github.com/modelmill/modelmill/pkg/api/types/publish"
	"github.com/modelmill/modelmill/pkg/rest"
	"github.com/modelmill/modelmill/pkg/utils/retry"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

func TestPublisher_PublishCode(t *testing.T) {
	t.Run("it submits the code and parses the started job", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("unexpected method: %s", r.Method)
			}
			if r.URL.Path != "/modelPublish/models" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}

			posted := struct {
				Code            string `json:"code"`
				DestinationName string `json:"destinationName"`
			}{}
			if err := json.NewDecoder(r.Body).Decode(&posted); err != nil {
				t.Fatal(err)
			}
			if posted.Code != "module m; end;" || posted.DestinationName != "mas-prod" {
				t.Errorf("unexpected submission: %+v", posted)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id":"job-1","state":"pending","destinationName":"mas-prod"}`)
		}))

		testee := rest.NewPublisher(session)
		job := try.To(testee.PublishCode(
			context.Background(), "module m; end;", "mas-prod",
		)).OrFatal(t)

		if job.ID != "job-1" || job.State != publish.JobStatePending {
			t.Errorf("unexpected job: %+v", job)
		}
	})
}

func TestPublisher_GetDestination(t *testing.T) {
	t.Run("it reads a destination by name", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/modelPublish/destinations/mas-prod" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"dest-1","name":"mas-prod","destinationType":"microAnalyticService"}`)
		}))

		testee := rest.NewPublisher(session)
		dest := try.To(testee.GetDestination(context.Background(), "mas-prod")).OrFatal(t)
		want := publish.Destination{ID: "dest-1", Name: "mas-prod", Type: publish.DestinationTypeMAS}
		if !dest.Equal(&want) {
			t.Errorf("unexpected destination: %+v", dest)
		}
	})

	t.Run("absence wraps ErrNotFound", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		testee := rest.NewPublisher(session)
		if _, err := testee.GetDestination(context.Background(), "no-such"); !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestAwaitJob(t *testing.T) {
	t.Run("it polls until the job settles", func(t *testing.T) {
		polls := 0
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/modelPublish/jobs/job-1" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			polls += 1
			state := publish.JobStateRunning
			if 3 <= polls {
				state = publish.JobStateCompleted
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"id":"job-1","state":%q}`, state)
		}))

		testee := rest.NewPublisher(session)
		job := &publish.Job{ID: "job-1", State: publish.JobStatePending}

		ctx, cancel := testutilctx.WithTest(context.Background(), t)
		defer cancel()

		settled := try.To(rest.AwaitJob(
			ctx, testee, job,
			retry.MaxAttempts(10, retry.StaticBackoff(time.Millisecond)),
		)).OrFatal(t)

		if settled.State != publish.JobStateCompleted {
			t.Errorf("unexpected state: %s", settled.State)
		}
		if polls != 3 {
			t.Errorf("unexpected poll count: %d", polls)
		}
	})

	t.Run("a settled job is returned without polling", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("a settled job should not be polled")
		}))

		testee := rest.NewPublisher(session)
		job := &publish.Job{ID: "job-1", State: publish.JobStateFailed}

		settled := try.To(rest.AwaitJob(
			context.Background(), testee, job, nil,
		)).OrFatal(t)
		if settled != job {
			t.Errorf("unexpected job: %+v", settled)
		}
	})

	t.Run("exhausted polling reports the last observed job", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"id":"job-1","state":"running"}`)
		}))

		testee := rest.NewPublisher(session)
		job := &publish.Job{ID: "job-1", State: publish.JobStatePending}

		last, err := rest.AwaitJob(
			context.Background(), testee, job,
			retry.MaxAttempts(2, retry.StaticBackoff(time.Millisecond)),
		)
		if !errors.Is(err, rest.ErrJobNotSettled) {
			t.Fatalf("unexpected error: %v", err)
		}
		if last == nil || last.State != publish.JobStateRunning {
			t.Errorf("the last observed job should be returned: %+v", last)
		}
	})

	t.Run("a failing read stops polling", func(t *testing.T) {
		session := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		testee := rest.NewPublisher(session)
		job := &publish.Job{ID: "job-gone", State: publish.JobStatePending}

		if _, err := rest.AwaitJob(
			context.Background(), testee, job,
			retry.MaxAttempts(5, retry.StaticBackoff(time.Millisecond)),
		); !errors.Is(err, rest.ErrNotFound) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
