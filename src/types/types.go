// Package types holds the shared data model for the page-load benchmark:
// the closed Browser/JSMode/CacheState enumerations, the per-trial RawSample
// and the ResultTree produced by one full sweep.
package types

import "fmt"

// Browser identifies one of the benchmarked browsers. The set is closed;
// anything else is a malformed-tree / malformed-config error, never a silent
// extra key.
type Browser string

const (
	Chrome  Browser = "Chrome"
	Firefox Browser = "Firefox"
)

// AllBrowsers returns the browsers in their fixed display/serialization order.
func AllBrowsers() []Browser { return []Browser{Chrome, Firefox} }

// ParseBrowser validates a browser name.
func ParseBrowser(s string) (Browser, error) {
	switch Browser(s) {
	case Chrome, Firefox:
		return Browser(s), nil
	}
	return "", fmt.Errorf("unknown browser %q (want Chrome or Firefox)", s)
}

// JSMode labels whether page JavaScript execution was enabled for a scenario.
type JSMode string

const (
	JSOn  JSMode = "JS_on"
	JSOff JSMode = "JS_off"
)

// AllJSModes returns the JS modes in their fixed order.
func AllJSModes() []JSMode { return []JSMode{JSOn, JSOff} }

// ParseJSMode validates a JS mode label.
func ParseJSMode(s string) (JSMode, error) {
	switch JSMode(s) {
	case JSOn, JSOff:
		return JSMode(s), nil
	}
	return "", fmt.Errorf("unknown js mode %q (want JS_on or JS_off)", s)
}

// CacheState distinguishes the first visit in a fresh profile (cold) from the
// immediate reload (warm).
type CacheState string

const (
	Cold CacheState = "cold"
	Warm CacheState = "warm"
)

// AllCacheStates returns the cache states in their fixed order.
func AllCacheStates() []CacheState { return []CacheState{Cold, Warm} }

// ParseCacheState validates a cache state label.
func ParseCacheState(s string) (CacheState, error) {
	switch CacheState(s) {
	case Cold, Warm:
		return CacheState(s), nil
	}
	return "", fmt.Errorf("unknown cache state %q (want cold or warm)", s)
}

// RawSample is one trial's measurements in milliseconds. A nil field means
// the underlying timing entry was unavailable ("no data"), which is distinct
// from zero and must never be coerced to it. BrowserStartTime is recorded on
// cold trials only and omitted from JSON otherwise.
type RawSample struct {
	BrowserStartTime     *float64 `json:"browser_start_time,omitempty"`
	FirstContentfulPaint *float64 `json:"fcp"`
	DOMInteractive       *float64 `json:"dom_interactive"`
	DOMContentLoaded     *float64 `json:"dom_content_loaded"`
	LoadEventEnd         *float64 `json:"load"`
}

// AllNull reports whether the sample carries no data at all (a wholly failed
// trial that exhausted its retry).
func (s RawSample) AllNull() bool {
	return s.BrowserStartTime == nil && s.FirstContentfulPaint == nil &&
		s.DOMInteractive == nil && s.DOMContentLoaded == nil && s.LoadEventEnd == nil
}

// Ms returns a pointer to v, for building samples from literals.
func Ms(v float64) *float64 { return &v }
