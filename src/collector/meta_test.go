package collector

import (
	"runtime"
	"testing"

	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

func TestNewMetaBasics(t *testing.T) {
	cfg := types.DefaultConfig()
	m := newMeta(cfg)
	if m.OS != runtime.GOOS || m.Arch != runtime.GOARCH {
		t.Fatalf("platform fields wrong: %s/%s", m.OS, m.Arch)
	}
	if m.Iterations != cfg.Iterations {
		t.Fatalf("iterations = %d, want %d", m.Iterations, cfg.Iterations)
	}
	if m.StartedAt.IsZero() {
		t.Fatal("start time not set")
	}
	// no GeoIP database configured: no lookups attempted
	if m.OriginCountries != nil {
		t.Fatalf("origin countries without a database: %v", m.OriginCountries)
	}
}

func TestOriginCountryRejectsBadURL(t *testing.T) {
	if _, ok := originCountry("/nonexistent.mmdb", "://not-a-url"); ok {
		t.Fatal("bad url must not resolve a country")
	}
	if _, ok := originCountry("/nonexistent.mmdb", "https:///nohost"); ok {
		t.Fatal("empty host must not resolve a country")
	}
}
