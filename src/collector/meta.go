package collector

import (
	"os"
	"runtime"
	"time"

	"github.com/jessehattabaugh/browser-performance-test/src/types"
)

// Meta describes the environment of one sweep for the report header. It is
// best-effort context, not measurement data: a missing field never fails the
// run.
type Meta struct {
	Hostname      string
	OS            string
	Arch          string
	StartedAt     time.Time
	Iterations    int
	Headless      bool
	SweepDuration time.Duration
	FailedTrials  int
	// OriginCountries maps each configured URL to the ISO country code of its
	// resolved origin, when a GeoLite2 database is configured.
	OriginCountries map[string]string
}

func newMeta(cfg types.Config) *Meta {
	m := &Meta{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		StartedAt:  time.Now().UTC(),
		Iterations: cfg.Iterations,
		Headless:   cfg.Headless,
	}
	if hn, err := os.Hostname(); err == nil {
		m.Hostname = hn
	}
	if cfg.GeoIPDB != "" {
		m.OriginCountries = make(map[string]string, len(cfg.URLs))
		for _, u := range cfg.URLs {
			if cc, ok := originCountry(cfg.GeoIPDB, u); ok {
				m.OriginCountries[u] = cc
			}
		}
	}
	return m
}
