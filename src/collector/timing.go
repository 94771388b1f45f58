package collector

import "github.com/jessehattabaugh/browser-performance-test/src/types"

// timingScript reads the current document's navigation and paint timing
// entries. Every field is either a positive millisecond offset from
// navigation start or null when the entry is unavailable (e.g. FCP before
// anything painted, loadEventEnd while the load event is still pending).
// Zero is never reported: an absent timing must stay "no data".
const timingScript = `(() => {
	const nav = performance.getEntriesByType('navigation').slice(-1)[0] || null;
	const paint = performance.getEntriesByName('first-contentful-paint').slice(-1)[0] || null;
	const pick = (v) => (typeof v === 'number' && v > 0 ? v : null);
	return {
		fcp: paint ? pick(paint.startTime) : null,
		dom_interactive: nav ? pick(nav.domInteractive) : null,
		dom_content_loaded: nav ? pick(nav.domContentLoadedEventEnd) : null,
		load: nav ? pick(nav.loadEventEnd) : null,
	};
})()`

// loadedScript is the poll predicate for "the load event has fired for the
// most recent navigation of this tab".
const loadedScript = `(() => {
	const entries = performance.getEntriesByType('navigation');
	return entries.length > 0 && entries[entries.length - 1].loadEventEnd > 0;
})()`

// timingPayload mirrors timingScript's return object.
type timingPayload struct {
	FCP              *float64 `json:"fcp"`
	DOMInteractive   *float64 `json:"dom_interactive"`
	DOMContentLoaded *float64 `json:"dom_content_loaded"`
	Load             *float64 `json:"load"`
}

// sample converts the payload into a RawSample. BrowserStartTime is not part
// of page timing; cold trials fill it in separately.
func (p timingPayload) sample() types.RawSample {
	return types.RawSample{
		FirstContentfulPaint: p.FCP,
		DOMInteractive:       p.DOMInteractive,
		DOMContentLoaded:     p.DOMContentLoaded,
		LoadEventEnd:         p.Load,
	}
}
