package projects_test

import (
	"encoding/json"
	"testing"

	"github.com/modelmill/modelmill/pkg/api/types/projects"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

func TestProject_JSON(t *testing.T) {
	t.Run("fields the client never touched survive a read-modify-write cycle", func(t *testing.T) {
		received := `{
			"id": "proj-1",
			"name": "churn",
			"function": "classification",
			"latestVersion": "3.2",
			"championModelName": "churn scorer",
			"customProperties": {"owner": "fraud team"}
		}`

		p := projects.Project{}
		if err := json.Unmarshal([]byte(received), &p); err != nil {
			t.Fatal(err)
		}
		if p.ID != "proj-1" || p.Name != "churn" || p.Function != "classification" {
			t.Errorf("unexpected project: %+v", p)
		}

		p.TargetLevel = "Binary"
		p.Function = "prediction"

		sent := try.To(json.Marshal(&p)).OrFatal(t)
		got := map[string]json.RawMessage{}
		if err := json.Unmarshal(sent, &got); err != nil {
			t.Fatal(err)
		}

		for field, want := range map[string]string{
			"latestVersion":     `"3.2"`,
			"championModelName": `"churn scorer"`,
			"customProperties":  `{"owner":"fraud team"}`,
		} {
			if string(got[field]) != want {
				t.Errorf("field %s should survive untouched: %s", field, got[field])
			}
		}

		// fields set on the struct win over the received ones
		if string(got["targetLevel"]) != `"Binary"` {
			t.Errorf("unexpected targetLevel: %s", got["targetLevel"])
		}
		if string(got["function"]) != `"prediction"` {
			t.Errorf("unexpected function: %s", got["function"])
		}
	})

	t.Run("a project never read marshals its own fields only", func(t *testing.T) {
		p := projects.Project{Name: "churn", Function: "classification"}

		sent := try.To(json.Marshal(&p)).OrFatal(t)
		got := map[string]json.RawMessage{}
		if err := json.Unmarshal(sent, &got); err != nil {
			t.Fatal(err)
		}
		if string(got["name"]) != `"churn"` {
			t.Errorf("unexpected name: %s", got["name"])
		}
		if _, ok := got["id"]; ok {
			t.Error("an empty id should be omitted")
		}
	})
}
