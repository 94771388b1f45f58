// Package report renders the benchmark aggregates into one self-contained
// HTML artifact: go-chart PNGs embedded as data URIs, tables for every
// number, and the aggregate data inlined as a JSON blob so other tooling can
// read the report without re-running the analysis.
//
// Rendering rules: inputs are never mutated, and an undefined mean is never
// plotted or printed as zero. A chart bar is skipped and a table cell shows
// "n/a" instead.
package report

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jessehattabaugh/browser-performance-test/src/analysis"
	"github.com/jessehattabaugh/browser-performance-test/src/collector"
	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

// Data carries everything the renderer consumes. All fields are read-only.
type Data struct {
	Tree     *types.ResultTree
	Averages map[analysis.ScenarioKey]analysis.CachePair
	Stats    map[types.Browser]analysis.BrowserStats
	Deltas   analysis.DeltaSet
	Meta     *collector.Meta
}

type chartView struct {
	Title string
	URI   template.URL
}

type row struct {
	Label string
	Cells []string
}

type tableView struct {
	Title   string
	Columns []string
	Rows    []row
}

type reportView struct {
	GeneratedAt string
	Meta        *collector.Meta
	Charts      []chartView
	Tables      []tableView
	DataJSON    template.JS
}

// Render writes the full HTML report.
func Render(w io.Writer, d Data) error {
	view := reportView{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Meta:        d.Meta,
	}

	for _, b := range types.AllBrowsers() {
		if cv, ok := scenarioChart(b, d); ok {
			view.Charts = append(view.Charts, cv)
		}
		if cv, ok := cumulativeChart(b, d); ok {
			view.Charts = append(view.Charts, cv)
		}
	}
	if cv, ok := deltaChart(d); ok {
		view.Charts = append(view.Charts, cv)
	}

	view.Tables = append(view.Tables, scenarioTable(d))
	view.Tables = append(view.Tables, cumulativeTable(d))
	view.Tables = append(view.Tables, deltaTable(d))

	blob, err := json.Marshal(struct {
		Averages map[string]analysis.CachePair           `json:"scenario_averages"`
		Stats    map[types.Browser]analysis.BrowserStats `json:"cumulative_stats"`
		Deltas   analysis.DeltaSet                       `json:"deltas"`
	}{
		Averages: keyedAverages(d.Averages),
		Stats:    d.Stats,
		Deltas:   d.Deltas,
	})
	if err != nil {
		return fmt.Errorf("marshal report data: %w", err)
	}
	view.DataJSON = template.JS(blob)

	return reportTemplate.Execute(w, view)
}

// keyedAverages flattens the struct-keyed scenario map into string keys for
// the embedded JSON blob.
func keyedAverages(in map[analysis.ScenarioKey]analysis.CachePair) map[string]analysis.CachePair {
	out := make(map[string]analysis.CachePair, len(in))
	for k, v := range in {
		out[analysis.ScenarioLabel(k.Browser, k.JS, k.URL)] = v
	}
	return out
}

// fmtMs renders an optional millisecond value; undefined stays visibly
// undefined.
func fmtMs(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *v)
}

// addBar appends a labeled bar when the value is defined.
func addBar(bars []chart.Value, label string, v *float64) []chart.Value {
	if v == nil {
		return bars
	}
	return append(bars, chart.Value{Label: label, Value: *v, Style: barStyle})
}

var barStyle = chart.Style{
	FillColor:   drawing.ColorBlue.WithAlpha(160),
	StrokeColor: drawing.ColorBlue,
	StrokeWidth: 0,
}

// renderPNG rasterizes one bar chart into a data URI. A chart with no
// defined bars is reported as not renderable rather than an error.
func renderPNG(title string, bars []chart.Value) (chartView, bool) {
	if len(bars) == 0 {
		return chartView{}, false
	}
	ch := chart.BarChart{
		Title:    title,
		Width:    1100,
		Height:   420,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 20},
		},
		XAxis: chart.Style{TextRotationDegrees: 25},
		YAxis: chart.YAxis{Name: "ms"},
		Bars:  bars,
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		collector.Warnf("report: render chart %q: %v", title, err)
		return chartView{}, false
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	return chartView{Title: title, URI: template.URL(uri)}, true
}

func scenarioChart(b types.Browser, d Data) (chartView, bool) {
	var bars []chart.Value
	for _, js := range types.AllJSModes() {
		for _, u := range d.Tree.URLs() {
			pair, ok := d.Averages[analysis.ScenarioKey{Browser: b, JS: js, URL: u}]
			if !ok {
				continue
			}
			base := analysis.DisplayURL(u) + " " + string(js)
			bars = addBar(bars, base+" cold", pair.Cold.FirstContentfulPaint)
			bars = addBar(bars, base+" warm", pair.Warm.FirstContentfulPaint)
		}
	}
	return renderPNG(fmt.Sprintf("%s: average First Contentful Paint by scenario", b), bars)
}

func cumulativeChart(b types.Browser, d Data) (chartView, bool) {
	s, ok := d.Stats[b]
	if !ok {
		return chartView{}, false
	}
	var bars []chart.Value
	bars = addBar(bars, "overall", s.Overall.FirstContentfulPaint)
	bars = addBar(bars, "JS on", s.JSOn.FirstContentfulPaint)
	bars = addBar(bars, "JS off", s.JSOff.FirstContentfulPaint)
	bars = addBar(bars, "cold", s.Cold.FirstContentfulPaint)
	bars = addBar(bars, "warm", s.Warm.FirstContentfulPaint)
	return renderPNG(fmt.Sprintf("%s: cumulative FCP by pool", b), bars)
}

func deltaChart(d Data) (chartView, bool) {
	var bars []chart.Value
	for _, b := range types.AllBrowsers() {
		if dl, ok := d.Deltas.JSOff[b]; ok {
			bars = addBar(bars, string(b)+" JS off-on", dl.FirstContentfulPaint)
		}
	}
	for _, b := range types.AllBrowsers() {
		if dl, ok := d.Deltas.WarmCache[b]; ok {
			bars = addBar(bars, string(b)+" warm-cold", dl.FirstContentfulPaint)
		}
	}
	bars = addBar(bars, "Firefox-Chrome", d.Deltas.FirefoxVsChrome.FirstContentfulPaint)
	return renderPNG("FCP deltas (positive = slower)", bars)
}

func scenarioTable(d Data) tableView {
	tv := tableView{
		Title: "Scenario averages (ms)",
		Columns: []string{
			"cold start", "cold FCP", "cold DOM interactive", "cold DCL", "cold load",
			"warm FCP", "warm DOM interactive", "warm DCL", "warm load",
		},
	}
	for _, b := range types.AllBrowsers() {
		for _, js := range types.AllJSModes() {
			for _, u := range d.Tree.URLs() {
				pair, ok := d.Averages[analysis.ScenarioKey{Browser: b, JS: js, URL: u}]
				if !ok {
					continue
				}
				tv.Rows = append(tv.Rows, row{
					Label: analysis.ScenarioLabel(b, js, u),
					Cells: []string{
						fmtMs(pair.Cold.BrowserStartTime),
						fmtMs(pair.Cold.FirstContentfulPaint),
						fmtMs(pair.Cold.DOMInteractive),
						fmtMs(pair.Cold.DOMContentLoaded),
						fmtMs(pair.Cold.LoadEventEnd),
						fmtMs(pair.Warm.FirstContentfulPaint),
						fmtMs(pair.Warm.DOMInteractive),
						fmtMs(pair.Warm.DOMContentLoaded),
						fmtMs(pair.Warm.LoadEventEnd),
					},
				})
			}
		}
	}
	return tv
}

func cumulativeTable(d Data) tableView {
	tv := tableView{
		Title:   "Cumulative stats (ms, pooled across URLs)",
		Columns: []string{"pool", "samples", "FCP", "load"},
	}
	for _, b := range types.AllBrowsers() {
		s, ok := d.Stats[b]
		if !ok {
			continue
		}
		pools := []struct {
			name string
			ps   analysis.PoolStats
		}{
			{"overall", s.Overall},
			{"JS on", s.JSOn},
			{"JS off", s.JSOff},
			{"cold", s.Cold},
			{"warm", s.Warm},
		}
		for _, p := range pools {
			tv.Rows = append(tv.Rows, row{
				Label: string(b),
				Cells: []string{
					p.name,
					fmt.Sprintf("%d", p.ps.Samples),
					fmtMs(p.ps.FirstContentfulPaint),
					fmtMs(p.ps.LoadEventEnd),
				},
			})
		}
	}
	return tv
}

func deltaTable(d Data) tableView {
	tv := tableView{
		Title:   "Deltas (ms, positive = second operand slower)",
		Columns: []string{"FCP", "load"},
	}
	for _, b := range types.AllBrowsers() {
		if dl, ok := d.Deltas.JSOff[b]; ok {
			tv.Rows = append(tv.Rows, row{
				Label: string(b) + " JS off vs on",
				Cells: []string{fmtMs(dl.FirstContentfulPaint), fmtMs(dl.LoadEventEnd)},
			})
		}
	}
	for _, b := range types.AllBrowsers() {
		if dl, ok := d.Deltas.WarmCache[b]; ok {
			tv.Rows = append(tv.Rows, row{
				Label: string(b) + " warm vs cold",
				Cells: []string{fmtMs(dl.FirstContentfulPaint), fmtMs(dl.LoadEventEnd)},
			})
		}
	}
	tv.Rows = append(tv.Rows, row{
		Label: "Firefox vs Chrome (overall)",
		Cells: []string{
			fmtMs(d.Deltas.FirefoxVsChrome.FirstContentfulPaint),
			fmtMs(d.Deltas.FirefoxVsChrome.LoadEventEnd),
		},
	})
	return tv
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Page-load benchmark report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 1150px; color: #222; }
h1 { font-size: 1.5rem; }
h2 { font-size: 1.15rem; margin-top: 2rem; }
table { border-collapse: collapse; margin: 0.5rem 0 1.5rem; font-size: 0.85rem; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: right; }
th:first-child, td:first-child { text-align: left; }
img { max-width: 100%; border: 1px solid #eee; margin-bottom: 1rem; }
.meta { color: #555; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>Page-load benchmark report</h1>
<p class="meta">generated {{.GeneratedAt}}
{{- with .Meta}} | host {{.Hostname}} ({{.OS}}/{{.Arch}}) | started {{.StartedAt.Format "2006-01-02 15:04:05 MST"}} | {{.Iterations}} iteration(s) per scenario | headless={{.Headless}} | sweep {{.SweepDuration}} | failed trials {{.FailedTrials}}{{end}}</p>
{{- with .Meta}}{{if .OriginCountries}}
<p class="meta">origin countries: {{range $u, $cc := .OriginCountries}}{{$u}}={{$cc}} {{end}}</p>
{{- end}}{{end}}
{{- range .Charts}}
<h2>{{.Title}}</h2>
<img src="{{.URI}}" alt="{{.Title}}">
{{- end}}
{{- range .Tables}}
<h2>{{.Title}}</h2>
<table>
<tr><th></th>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
{{- range .Rows}}
<tr><td>{{.Label}}</td>{{range .Cells}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</table>
{{- end}}
<script type="application/json" id="benchmark-data">{{.DataJSON}}</script>
</body>
</html>
`))
