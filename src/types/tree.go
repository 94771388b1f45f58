package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedTree marks structural errors: a lookup or a deserialization hit
// a browser/JS-mode/URL/cache-state key that the configured matrix does not
// contain. These are fatal to aggregation, unlike empty leaves which merely
// yield undefined means.
var ErrMalformedTree = errors.New("malformed result tree")

// CacheSplit holds the ordered trial samples for one (browser, jsMode, url)
// scenario, separated by cache state. Slice order is trial order.
type CacheSplit struct {
	Cold []RawSample `json:"cold"`
	Warm []RawSample `json:"warm"`
}

// ByState returns the trial slice for one cache state.
func (c *CacheSplit) ByState(cs CacheState) ([]RawSample, error) {
	switch cs {
	case Cold:
		return c.Cold, nil
	case Warm:
		return c.Warm, nil
	}
	return nil, fmt.Errorf("%w: cache state %q", ErrMalformedTree, cs)
}

// ResultTree is the complete raw output of one sweep:
// Browser -> JSMode -> URL -> CacheState -> ordered trial samples.
// The shape is pre-seeded over the full configured matrix at construction so
// missing-key errors surface as structural failures, not silent skips. The
// tree is append-only during collection and immutable afterwards.
type ResultTree struct {
	urls     []string
	browsers map[Browser]map[JSMode]map[string]*CacheSplit
}

// NewResultTree pre-seeds the full (browser x jsMode x url) matrix with empty
// cache splits for the given URL list (order preserved for serialization).
func NewResultTree(urls []string) *ResultTree {
	t := &ResultTree{
		urls:     append([]string(nil), urls...),
		browsers: make(map[Browser]map[JSMode]map[string]*CacheSplit, 2),
	}
	for _, b := range AllBrowsers() {
		t.browsers[b] = make(map[JSMode]map[string]*CacheSplit, 2)
		for _, js := range AllJSModes() {
			pages := make(map[string]*CacheSplit, len(urls))
			for _, u := range urls {
				pages[u] = &CacheSplit{}
			}
			t.browsers[b][js] = pages
		}
	}
	return t
}

// URLs returns the configured page URLs in order.
func (t *ResultTree) URLs() []string { return append([]string(nil), t.urls...) }

// Split returns the cache split for one scenario, or a structural error when
// the scenario is not part of the configured matrix.
func (t *ResultTree) Split(b Browser, js JSMode, url string) (*CacheSplit, error) {
	modes, ok := t.browsers[b]
	if !ok {
		return nil, fmt.Errorf("%w: browser %q", ErrMalformedTree, b)
	}
	pages, ok := modes[js]
	if !ok {
		return nil, fmt.Errorf("%w: js mode %q", ErrMalformedTree, js)
	}
	split, ok := pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: url %q", ErrMalformedTree, url)
	}
	return split, nil
}

// Samples returns the ordered trial samples for one fully qualified leaf.
func (t *ResultTree) Samples(b Browser, js JSMode, url string, cs CacheState) ([]RawSample, error) {
	split, err := t.Split(b, js, url)
	if err != nil {
		return nil, err
	}
	return split.ByState(cs)
}

// Append records one trial sample at the end of a leaf sequence.
func (t *ResultTree) Append(b Browser, js JSMode, url string, cs CacheState, s RawSample) error {
	split, err := t.Split(b, js, url)
	if err != nil {
		return err
	}
	switch cs {
	case Cold:
		split.Cold = append(split.Cold, s)
	case Warm:
		split.Warm = append(split.Warm, s)
	default:
		return fmt.Errorf("%w: cache state %q", ErrMalformedTree, cs)
	}
	return nil
}

// Validate checks the completed-collection invariant: every leaf holds the
// same number of trials.
func (t *ResultTree) Validate() error {
	n := -1
	for _, b := range AllBrowsers() {
		for _, js := range AllJSModes() {
			for _, u := range t.urls {
				split, err := t.Split(b, js, u)
				if err != nil {
					return err
				}
				for _, leaf := range [][]RawSample{split.Cold, split.Warm} {
					if n == -1 {
						n = len(leaf)
						continue
					}
					if len(leaf) != n {
						return fmt.Errorf("%w: uneven trial counts (%s/%s/%s has %d, expected %d)",
							ErrMalformedTree, b, js, u, len(leaf), n)
					}
				}
			}
		}
	}
	return nil
}

// MarshalJSON emits the nested mapping form
// Browser -> JSMode -> URL -> {cold, warm} -> [samples], with browsers and JS
// modes in their fixed order and URLs in configured order.
func (t *ResultTree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for bi, b := range AllBrowsers() {
		if bi > 0 {
			buf.WriteByte(',')
		}
		writeKey(&buf, string(b))
		buf.WriteByte('{')
		for ji, js := range AllJSModes() {
			if ji > 0 {
				buf.WriteByte(',')
			}
			writeKey(&buf, string(js))
			buf.WriteByte('{')
			for ui, u := range t.urls {
				if ui > 0 {
					buf.WriteByte(',')
				}
				split, err := t.Split(b, js, u)
				if err != nil {
					return nil, err
				}
				writeKey(&buf, u)
				enc, err := json.Marshal(split)
				if err != nil {
					return nil, err
				}
				buf.Write(enc)
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeKey(buf *bytes.Buffer, key string) {
	enc, _ := json.Marshal(key)
	buf.Write(enc)
	buf.WriteByte(':')
}

// UnmarshalJSON parses the nested mapping form with fail-fast key validation:
// unknown browsers, JS modes or cache states abort immediately, and every
// (browser, jsMode) branch must carry the same URL set. The URL order of the
// first branch encountered becomes the tree's configured order.
func (t *ResultTree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	parsed := &ResultTree{browsers: make(map[Browser]map[JSMode]map[string]*CacheSplit, 2)}
	st := &treeDecodeState{tree: parsed}
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedTree, err)
		}
		b, err := ParseBrowser(name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedTree, err)
		}
		if _, dup := parsed.browsers[b]; dup {
			return fmt.Errorf("%w: duplicate browser %q", ErrMalformedTree, b)
		}
		modes, err := parseModes(dec, st, b)
		if err != nil {
			return err
		}
		parsed.browsers[b] = modes
	}
	if err := expectDelim(dec, '}'); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedTree, err)
	}
	for _, b := range AllBrowsers() {
		modes, ok := parsed.browsers[b]
		if !ok {
			return fmt.Errorf("%w: missing browser %q", ErrMalformedTree, b)
		}
		for _, js := range AllJSModes() {
			if _, ok := modes[js]; !ok {
				return fmt.Errorf("%w: missing js mode %q under %q", ErrMalformedTree, js, b)
			}
		}
	}
	*t = *parsed
	return nil
}

// treeDecodeState carries the URL-set agreement across branches. The urlsSet
// flag, not the slice itself, marks whether a branch has pinned the set yet;
// an empty first branch still pins an empty set.
type treeDecodeState struct {
	tree    *ResultTree
	urlsSet bool
}

func parseModes(dec *json.Decoder, st *treeDecodeState, b Browser) (map[JSMode]map[string]*CacheSplit, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: under %q: %v", ErrMalformedTree, b, err)
	}
	modes := make(map[JSMode]map[string]*CacheSplit, 2)
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
		}
		js, err := ParseJSMode(name)
		if err != nil {
			return nil, fmt.Errorf("%w: under %q: %v", ErrMalformedTree, b, err)
		}
		pages, err := parsePages(dec, st, b, js)
		if err != nil {
			return nil, err
		}
		modes[js] = pages
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("%w: under %q: %v", ErrMalformedTree, b, err)
	}
	return modes, nil
}

func parsePages(dec *json.Decoder, st *treeDecodeState, b Browser, js JSMode) (map[string]*CacheSplit, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("%w: under %q/%q: %v", ErrMalformedTree, b, js, err)
	}
	first := !st.urlsSet
	pages := make(map[string]*CacheSplit)
	for dec.More() {
		u, err := nextKey(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedTree, err)
		}
		if _, dup := pages[u]; dup {
			return nil, fmt.Errorf("%w: duplicate url %q under %q/%q", ErrMalformedTree, u, b, js)
		}
		var split CacheSplit
		if err := decodeSplit(dec, &split); err != nil {
			return nil, fmt.Errorf("%w: %q/%q/%q: %v", ErrMalformedTree, b, js, u, err)
		}
		pages[u] = &split
		if first {
			st.tree.urls = append(st.tree.urls, u)
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, fmt.Errorf("%w: under %q/%q: %v", ErrMalformedTree, b, js, err)
	}
	if first {
		st.urlsSet = true
	} else {
		if len(pages) != len(st.tree.urls) {
			return nil, fmt.Errorf("%w: url set mismatch under %q/%q", ErrMalformedTree, b, js)
		}
		for _, u := range st.tree.urls {
			if _, ok := pages[u]; !ok {
				return nil, fmt.Errorf("%w: missing url %q under %q/%q", ErrMalformedTree, u, b, js)
			}
		}
	}
	return pages, nil
}

// decodeSplit decodes one {cold, warm} object, rejecting unknown cache keys.
func decodeSplit(dec *json.Decoder, split *CacheSplit) error {
	if err := expectDelim(dec, '{'); err != nil {
		return err
	}
	seen := map[CacheState]bool{}
	for dec.More() {
		name, err := nextKey(dec)
		if err != nil {
			return err
		}
		cs, err := ParseCacheState(name)
		if err != nil {
			return err
		}
		if seen[cs] {
			return fmt.Errorf("duplicate cache state %q", cs)
		}
		seen[cs] = true
		var samples []RawSample
		if err := dec.Decode(&samples); err != nil {
			return fmt.Errorf("samples for %q: %v", cs, err)
		}
		if cs == Cold {
			split.Cold = samples
		} else {
			split.Warm = samples
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}
	if !seen[Cold] || !seen[Warm] {
		return errors.New("cache split must contain both cold and warm")
	}
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("unexpected end of document (want %q)", want)
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("unexpected token %v (want %q)", tok, want)
	}
	return nil
}

func nextKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("unexpected token %v (want object key)", tok)
	}
	return s, nil
}
