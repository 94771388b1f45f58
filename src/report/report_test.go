package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/jessehattabaugh/browser-performance-test/src/analysis"
	"github.com/jessehattabaugh/browser-performance-test/src/collector"
	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

func buildData(t *testing.T, tree *types.ResultTree) Data {
	t.Helper()
	averages, err := analysis.ScenarioAverages(tree)
	if err != nil {
		t.Fatalf("scenario averages: %v", err)
	}
	stats, err := analysis.CumulativeStats(tree)
	if err != nil {
		t.Fatalf("cumulative stats: %v", err)
	}
	return Data{
		Tree:     tree,
		Averages: averages,
		Stats:    stats,
		Deltas:   analysis.Deltas(stats),
		Meta: &collector.Meta{
			Hostname:   "bench-host",
			OS:         "linux",
			Arch:       "amd64",
			StartedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Iterations: 2,
		},
	}
}

func TestRenderEmptyTreeShowsNoDataNotZero(t *testing.T) {
	tree := types.NewResultTree([]string{"https://example.com/"})
	var buf bytes.Buffer
	if err := Render(&buf, buildData(t, tree)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "n/a") {
		t.Fatal("undefined means must render as n/a")
	}
	// no chart can exist without a single defined mean
	if strings.Contains(out, "data:image/png") {
		t.Fatal("empty data must not produce charts")
	}
	// undefined must never be fabricated into a numeric zero cell
	if strings.Contains(out, "<td>0.0</td>") {
		t.Fatal("undefined mean rendered as 0.0")
	}
	// the embedded blob keeps nulls explicit
	if !strings.Contains(out, `"fcp":null`) {
		t.Fatal("embedded data blob lost null means")
	}
}

func TestRenderFullTree(t *testing.T) {
	u := "https://example.com/"
	tree := types.NewResultTree([]string{u})
	for _, b := range types.AllBrowsers() {
		for _, js := range types.AllJSModes() {
			cold := types.RawSample{
				BrowserStartTime:     types.Ms(240),
				FirstContentfulPaint: types.Ms(900),
				DOMInteractive:       types.Ms(700),
				DOMContentLoaded:     types.Ms(1100),
				LoadEventEnd:         types.Ms(1800),
			}
			warm := types.RawSample{
				FirstContentfulPaint: types.Ms(300),
				LoadEventEnd:         types.Ms(600),
			}
			if err := tree.Append(b, js, u, types.Cold, cold); err != nil {
				t.Fatalf("append: %v", err)
			}
			if err := tree.Append(b, js, u, types.Warm, warm); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := Render(&buf, buildData(t, tree)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "data:image/png;base64,") {
		t.Fatal("charts missing from report")
	}
	if !strings.Contains(out, "Chrome JS_off example.com") {
		t.Fatal("scenario labels missing")
	}
	if !strings.Contains(out, "bench-host") {
		t.Fatal("meta header missing")
	}
	if !strings.Contains(out, `id="benchmark-data"`) {
		t.Fatal("embedded data blob missing")
	}
}

func TestRenderDoesNotMutateInputs(t *testing.T) {
	u := "https://example.com/"
	tree := types.NewResultTree([]string{u})
	if err := tree.Append(types.Chrome, types.JSOn, u, types.Cold,
		types.RawSample{FirstContentfulPaint: types.Ms(500)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	d := buildData(t, tree)
	before := *d.Averages[analysis.ScenarioKey{Browser: types.Chrome, JS: types.JSOn, URL: u}].Cold.FirstContentfulPaint

	var buf bytes.Buffer
	if err := Render(&buf, d); err != nil {
		t.Fatalf("render: %v", err)
	}
	after := *d.Averages[analysis.ScenarioKey{Browser: types.Chrome, JS: types.JSOn, URL: u}].Cold.FirstContentfulPaint
	if before != after {
		t.Fatalf("render mutated averages: %v -> %v", before, after)
	}
	samples, err := d.Tree.Samples(types.Chrome, types.JSOn, u, types.Cold)
	if err != nil || len(samples) != 1 || *samples[0].FirstContentfulPaint != 500 {
		t.Fatalf("render mutated tree: %v %v", samples, err)
	}
}
