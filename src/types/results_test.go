package types

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestWriteLoadResultsRoundTrip(t *testing.T) {
	urls := []string{"https://a.example/", "https://b.example/"}
	tree := seedFullTree(t, urls, 3)
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteResults(path, tree); err != nil {
		t.Fatalf("write: %v", err)
	}
	back, err := LoadResults(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(back.URLs(), urls) {
		t.Fatalf("urls after reload: %v", back.URLs())
	}
	want, _ := tree.Samples(Firefox, JSOff, urls[1], Warm)
	got, err := back.Samples(Firefox, JSOff, urls[1], Warm)
	if err != nil {
		t.Fatalf("samples: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("samples changed across write/load")
	}
}

func TestLoadResultsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(`{"Chrome":"nope"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadResults(path); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("garbage accepted: %v", err)
	}
}

func TestLoadResultsRejectsUnevenTrialCounts(t *testing.T) {
	u := "https://a.example/"
	tree := seedFullTree(t, []string{u}, 1)
	if err := tree.Append(Chrome, JSOn, u, Cold, RawSample{}); err != nil {
		t.Fatalf("append: %v", err)
	}
	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteResults(path, tree); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadResults(path); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("uneven tree accepted: %v", err)
	}
}
