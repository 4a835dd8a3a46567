package base64marshall_test

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/modelmill/modelmill/pkg/utils/base64marshall"
	"github.com/modelmill/modelmill/pkg/utils/try"
)

func TestBytes(t *testing.T) {
	payload := []byte("champion-model-archive")
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("String renders the content as base64", func(t *testing.T) {
		testee := base64marshall.New(payload)
		if testee.String() != encoded {
			t.Errorf("got %s, want %s", testee.String(), encoded)
		}
	})

	t.Run("Bytes hands back the underlying slice", func(t *testing.T) {
		testee := base64marshall.New(payload)
		if !bytes.Equal(testee.Bytes(), payload) {
			t.Errorf("got %s, want %s", testee.Bytes(), payload)
		}
	})

	t.Run("it marshals to a base64 JSON string", func(t *testing.T) {
		type envelope struct {
			Content base64marshall.Bytes `json:"content"`
		}
		got := string(try.To(json.Marshal(
			envelope{Content: base64marshall.New(payload)},
		)).OrFatal(t))

		want := `{"content":"` + encoded + `"}`
		if got != want {
			t.Errorf("got %s, want %s", got, want)
		}
	})

	t.Run("it unmarshals a base64 JSON string back to the raw bytes", func(t *testing.T) {
		type envelope struct {
			Content base64marshall.Bytes `json:"content"`
		}
		got := envelope{}
		if err := json.Unmarshal(
			[]byte(`{"content":"`+encoded+`"}`), &got,
		); err != nil {
			t.Fatal(err)
		}

		if !bytes.Equal(got.Content.Bytes(), payload) {
			t.Errorf("got %s, want %s", got.Content.Bytes(), payload)
		}
	})

	t.Run("JSON null unmarshals to nil", func(t *testing.T) {
		testee := base64marshall.New(payload)
		if err := json.Unmarshal([]byte("null"), &testee); err != nil {
			t.Fatal(err)
		}
		if testee != nil {
			t.Errorf("got %v, want nil", testee)
		}
	})

	t.Run("a string which is not base64 is an error", func(t *testing.T) {
		testee := base64marshall.Bytes{}
		if err := json.Unmarshal([]byte(`"%%not-base64%%"`), &testee); err == nil {
			t.Error("no error raised")
		}
	})
}
