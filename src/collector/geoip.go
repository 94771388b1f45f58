package collector

import (
	"net"
	neturl "net/url"

	"github.com/oschwald/geoip2-golang"
)

// originCountry resolves the host of rawURL and looks up the ISO country code
// of its first address in the given GeoLite2 country database. Returns
// ok=false when resolution or the lookup fails; callers treat that as
// "country unknown", never as an error.
func originCountry(dbPath, rawURL string) (string, bool) {
	u, err := neturl.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	ips, err := net.LookupIP(u.Hostname())
	if err != nil || len(ips) == 0 {
		return "", false
	}
	db, err := geoip2.Open(dbPath)
	if err != nil {
		Debugf("geoip: open %s: %v", dbPath, err)
		return "", false
	}
	defer db.Close()
	rec, err := db.Country(ips[0])
	if err != nil || rec == nil || rec.Country.IsoCode == "" {
		return "", false
	}
	return rec.Country.IsoCode, true
}
