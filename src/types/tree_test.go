package types

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewResultTreePreseedsFullMatrix(t *testing.T) {
	urls := []string{"https://a.example/", "https://b.example/"}
	tree := NewResultTree(urls)
	for _, b := range AllBrowsers() {
		for _, js := range AllJSModes() {
			for _, u := range urls {
				for _, cs := range AllCacheStates() {
					samples, err := tree.Samples(b, js, u, cs)
					if err != nil {
						t.Fatalf("pre-seeded leaf missing: %v", err)
					}
					if len(samples) != 0 {
						t.Fatalf("fresh leaf not empty: %d", len(samples))
					}
				}
			}
		}
	}
}

func TestTreeLookupsFailFast(t *testing.T) {
	tree := NewResultTree([]string{"https://a.example/"})
	if _, err := tree.Split("Safari", JSOn, "https://a.example/"); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("unknown browser: got %v", err)
	}
	if _, err := tree.Split(Chrome, "JS_maybe", "https://a.example/"); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("unknown js mode: got %v", err)
	}
	if _, err := tree.Split(Chrome, JSOn, "https://nope.example/"); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("unknown url: got %v", err)
	}
	if _, err := tree.Samples(Chrome, JSOn, "https://a.example/", "lukewarm"); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("unknown cache state: got %v", err)
	}
}

func seedFullTree(t *testing.T, urls []string, trials int) *ResultTree {
	t.Helper()
	tree := NewResultTree(urls)
	v := 100.0
	for _, b := range AllBrowsers() {
		for _, js := range AllJSModes() {
			for _, u := range urls {
				for _, cs := range AllCacheStates() {
					for i := 0; i < trials; i++ {
						s := RawSample{FirstContentfulPaint: Ms(v), LoadEventEnd: Ms(v * 3)}
						if cs == Cold {
							s.BrowserStartTime = Ms(250)
						}
						if err := tree.Append(b, js, u, cs, s); err != nil {
							t.Fatalf("append: %v", err)
						}
						v += 7
					}
				}
			}
		}
	}
	return tree
}

func TestTreeJSONRoundTrip(t *testing.T) {
	urls := []string{"https://b.example/", "https://a.example/"} // non-sorted on purpose
	tree := seedFullTree(t, urls, 2)
	// one all-null trial and one partial trial survive the round trip
	if err := tree.Append(Chrome, JSOn, urls[0], Cold, RawSample{BrowserStartTime: Ms(300)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tree.Append(Chrome, JSOn, urls[0], Warm, RawSample{}); err != nil {
		t.Fatalf("append: %v", err)
	}

	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back ResultTree
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back.URLs(), urls) {
		t.Fatalf("url order not preserved: %v", back.URLs())
	}
	for _, b := range AllBrowsers() {
		for _, js := range AllJSModes() {
			for _, u := range urls {
				want, _ := tree.Split(b, js, u)
				got, err := back.Split(b, js, u)
				if err != nil {
					t.Fatalf("split after round trip: %v", err)
				}
				if !reflect.DeepEqual(want, got) {
					t.Fatalf("leaf %s/%s/%s changed in round trip", b, js, u)
				}
			}
		}
	}
}

func TestTreeMarshalColdOmitsNothingWarmOmitsStartTime(t *testing.T) {
	u := "https://a.example/"
	tree := NewResultTree([]string{u})
	if err := tree.Append(Chrome, JSOn, u, Cold, RawSample{BrowserStartTime: Ms(250), FirstContentfulPaint: Ms(100)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tree.Append(Chrome, JSOn, u, Warm, RawSample{FirstContentfulPaint: Ms(50)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	data, err := json.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"browser_start_time":250`) {
		t.Fatalf("cold sample lost browser_start_time: %s", s)
	}
	if strings.Count(s, "browser_start_time") != 1 {
		t.Fatalf("warm sample must omit browser_start_time: %s", s)
	}
	if !strings.Contains(s, `"dom_interactive":null`) {
		t.Fatalf("absent metrics must serialize as null, not vanish: %s", s)
	}
}

func TestTreeUnmarshalRejectsMalformedShapes(t *testing.T) {
	leaf := `{"cold":[],"warm":[]}`
	valid := `{
		"Chrome":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}},
		"Firefox":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
	}`
	var ok ResultTree
	if err := json.Unmarshal([]byte(valid), &ok); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	cases := map[string]string{
		"unknown browser": `{"Safari":{}}`,
		"unknown js mode": `{"Chrome":{"JS_sometimes":{}}}`,
		"unknown cache state": `{
			"Chrome":{"JS_on":{"https://a.example/":{"cold":[],"lukewarm":[]}},"JS_off":{"https://a.example/":` + leaf + `}},
			"Firefox":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
		}`,
		"missing warm": `{
			"Chrome":{"JS_on":{"https://a.example/":{"cold":[]}},"JS_off":{"https://a.example/":` + leaf + `}},
			"Firefox":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
		}`,
		"missing browser": `{
			"Chrome":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
		}`,
		"missing js mode": `{
			"Chrome":{"JS_on":{"https://a.example/":` + leaf + `}},
			"Firefox":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
		}`,
		"url set mismatch": `{
			"Chrome":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://b.example/":` + leaf + `}},
			"Firefox":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
		}`,
		"empty first branch with populated later branch": `{
			"Chrome":{"JS_on":{},"JS_off":{"https://a.example/":` + leaf + `}},
			"Firefox":{"JS_on":{"https://a.example/":` + leaf + `},"JS_off":{"https://a.example/":` + leaf + `}}
		}`,
		"not an object": `[1,2,3]`,
	}
	for name, doc := range cases {
		var tree ResultTree
		err := json.Unmarshal([]byte(doc), &tree)
		if err == nil {
			t.Fatalf("%s: malformed document accepted", name)
		}
		if !strings.Contains(err.Error(), "malformed result tree") {
			t.Fatalf("%s: error not structural: %v", name, err)
		}
	}
}

func TestValidateUnevenLeaf(t *testing.T) {
	u := "https://a.example/"
	tree := seedFullTree(t, []string{u}, 2)
	if err := tree.Validate(); err != nil {
		t.Fatalf("even tree rejected: %v", err)
	}
	if err := tree.Append(Firefox, JSOff, u, Warm, RawSample{}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := tree.Validate(); !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("uneven tree accepted: %v", err)
	}
}
