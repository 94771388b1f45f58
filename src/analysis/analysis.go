// Package analysis reduces a collected ResultTree into per-scenario averages,
// per-browser cumulative pool statistics and pairwise deltas. Everything here
// is a pure function of an immutable tree: no I/O, no locks, no retained
// state between calls.
//
// Undefined results are data, not errors. A mean over zero contributing
// samples is nil and stays nil through every downstream computation; only
// structural problems (a scenario outside the configured matrix) return an
// error.
package analysis

import (
	"strings"

	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

// Mean returns the arithmetic mean of vals. ok is false for an empty input:
// "no data" is an explicit result, never zero and never an error. Filtering
// of null fields happens in the callers; Mean itself performs none.
func Mean(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

func meanPtr(vals []float64) *float64 {
	m, ok := Mean(vals)
	if !ok {
		return nil
	}
	return &m
}

// gather appends v to dst when it carries data.
func gather(dst []float64, v *float64) []float64 {
	if v != nil {
		dst = append(dst, *v)
	}
	return dst
}

// sub returns b-a, or nil when either operand is undefined. An undefined
// delta means "insufficient data", never "no difference".
func sub(b, a *float64) *float64 {
	if b == nil || a == nil {
		return nil
	}
	d := *b - *a
	return &d
}

// ScenarioKey identifies one (browser, jsMode, url) scenario.
type ScenarioKey struct {
	Browser types.Browser
	JS      types.JSMode
	URL     string
}

// ScenarioAverage holds the per-metric means over one leaf's trials, each
// field null-filtered independently. nil = no trial carried that field.
type ScenarioAverage struct {
	BrowserStartTime     *float64 `json:"browser_start_time,omitempty"`
	FirstContentfulPaint *float64 `json:"fcp"`
	DOMInteractive       *float64 `json:"dom_interactive"`
	DOMContentLoaded     *float64 `json:"dom_content_loaded"`
	LoadEventEnd         *float64 `json:"load"`
}

// CachePair pairs the cold and warm averages of one scenario.
type CachePair struct {
	Cold ScenarioAverage `json:"cold"`
	Warm ScenarioAverage `json:"warm"`
}

// ScenarioAverages computes the per-leaf averages for every scenario in the
// tree. Trial order within a leaf does not affect the result.
func ScenarioAverages(tree *types.ResultTree) (map[ScenarioKey]CachePair, error) {
	out := make(map[ScenarioKey]CachePair)
	for _, b := range types.AllBrowsers() {
		for _, js := range types.AllJSModes() {
			for _, u := range tree.URLs() {
				split, err := tree.Split(b, js, u)
				if err != nil {
					return nil, err
				}
				out[ScenarioKey{Browser: b, JS: js, URL: u}] = CachePair{
					Cold: averageLeaf(split.Cold),
					Warm: averageLeaf(split.Warm),
				}
			}
		}
	}
	return out, nil
}

func averageLeaf(samples []types.RawSample) ScenarioAverage {
	var start, fcp, di, dcl, load []float64
	for _, s := range samples {
		start = gather(start, s.BrowserStartTime)
		fcp = gather(fcp, s.FirstContentfulPaint)
		di = gather(di, s.DOMInteractive)
		dcl = gather(dcl, s.DOMContentLoaded)
		load = gather(load, s.LoadEventEnd)
	}
	return ScenarioAverage{
		BrowserStartTime:     meanPtr(start),
		FirstContentfulPaint: meanPtr(fcp),
		DOMInteractive:       meanPtr(di),
		DOMContentLoaded:     meanPtr(dcl),
		LoadEventEnd:         meanPtr(load),
	}
}

// PoolStats holds the null-filtered FCP and load-end means over one flattened
// sample pool, plus the pool size (all matching trials, including all-null
// ones).
type PoolStats struct {
	FirstContentfulPaint *float64 `json:"fcp"`
	LoadEventEnd         *float64 `json:"load"`
	Samples              int      `json:"samples"`
}

// BrowserStats groups the five overlapping pools of one browser. Overall
// pools cold and warm together: it is a grand mean over the flattened
// samples, not an average of the two per-cache means.
type BrowserStats struct {
	Overall PoolStats `json:"overall"`
	JSOn    PoolStats `json:"jsOn"`
	JSOff   PoolStats `json:"jsOff"`
	Cold    PoolStats `json:"cold"`
	Warm    PoolStats `json:"warm"`
}

// CumulativeStats computes per-browser pool statistics across every URL.
func CumulativeStats(tree *types.ResultTree) (map[types.Browser]BrowserStats, error) {
	out := make(map[types.Browser]BrowserStats, len(types.AllBrowsers()))
	for _, b := range types.AllBrowsers() {
		var overall, jsOn, jsOff, cold, warm []types.RawSample
		for _, js := range types.AllJSModes() {
			for _, u := range tree.URLs() {
				split, err := tree.Split(b, js, u)
				if err != nil {
					return nil, err
				}
				for _, cs := range types.AllCacheStates() {
					leaf, err := split.ByState(cs)
					if err != nil {
						return nil, err
					}
					overall = append(overall, leaf...)
					if js == types.JSOn {
						jsOn = append(jsOn, leaf...)
					} else {
						jsOff = append(jsOff, leaf...)
					}
					if cs == types.Cold {
						cold = append(cold, leaf...)
					} else {
						warm = append(warm, leaf...)
					}
				}
			}
		}
		out[b] = BrowserStats{
			Overall: poolStats(overall),
			JSOn:    poolStats(jsOn),
			JSOff:   poolStats(jsOff),
			Cold:    poolStats(cold),
			Warm:    poolStats(warm),
		}
	}
	return out, nil
}

func poolStats(pool []types.RawSample) PoolStats {
	var fcp, load []float64
	for _, s := range pool {
		fcp = gather(fcp, s.FirstContentfulPaint)
		load = gather(load, s.LoadEventEnd)
	}
	return PoolStats{
		FirstContentfulPaint: meanPtr(fcp),
		LoadEventEnd:         meanPtr(load),
		Samples:              len(pool),
	}
}

// Delta is a signed difference of two pool means per metric; nil when either
// operand was undefined.
type Delta struct {
	FirstContentfulPaint *float64 `json:"fcp"`
	LoadEventEnd         *float64 `json:"load"`
}

// DeltaSet holds the three fixed comparisons.
//
// JSOff: JS_off minus JS_on per browser; positive = disabling JS slowed the
// page down. WarmCache: warm minus cold per browser; warm is expected to be
// negative, a positive value is an anomaly worth flagging but not an error.
// FirefoxVsChrome: Firefox overall minus Chrome overall.
type DeltaSet struct {
	JSOff           map[types.Browser]Delta `json:"jsOff"`
	WarmCache       map[types.Browser]Delta `json:"warmCache"`
	FirefoxVsChrome Delta                   `json:"firefoxVsChrome"`
}

// Deltas derives the comparison set from cumulative per-browser stats.
func Deltas(stats map[types.Browser]BrowserStats) DeltaSet {
	set := DeltaSet{
		JSOff:     make(map[types.Browser]Delta, len(stats)),
		WarmCache: make(map[types.Browser]Delta, len(stats)),
	}
	for _, b := range types.AllBrowsers() {
		s, ok := stats[b]
		if !ok {
			continue
		}
		set.JSOff[b] = Delta{
			FirstContentfulPaint: sub(s.JSOff.FirstContentfulPaint, s.JSOn.FirstContentfulPaint),
			LoadEventEnd:         sub(s.JSOff.LoadEventEnd, s.JSOn.LoadEventEnd),
		}
		set.WarmCache[b] = Delta{
			FirstContentfulPaint: sub(s.Warm.FirstContentfulPaint, s.Cold.FirstContentfulPaint),
			LoadEventEnd:         sub(s.Warm.LoadEventEnd, s.Cold.LoadEventEnd),
		}
	}
	ff, ffOK := stats[types.Firefox]
	cr, crOK := stats[types.Chrome]
	if ffOK && crOK {
		set.FirefoxVsChrome = Delta{
			FirstContentfulPaint: sub(ff.Overall.FirstContentfulPaint, cr.Overall.FirstContentfulPaint),
			LoadEventEnd:         sub(ff.Overall.LoadEventEnd, cr.Overall.LoadEventEnd),
		}
	}
	return set
}

// ScenarioLabel builds the human-readable label for one scenario: browser,
// JS mode and the URL with its scheme and trailing slash stripped.
func ScenarioLabel(b types.Browser, js types.JSMode, url string) string {
	return string(b) + " " + string(js) + " " + DisplayURL(url)
}

// DisplayURL strips the scheme and trailing slash for chart axes and table
// headings.
func DisplayURL(u string) string {
	u = strings.TrimPrefix(u, "https://")
	u = strings.TrimPrefix(u, "http://")
	return strings.TrimSuffix(u, "/")
}
