package threat

import (
	"strings"

	"gosniff/internal/model"
)

// LookupGeo returns a canned location hint for an address. Private ranges
// map to a local marker and two well-known resolver prefixes map to fixed
// cities; everything else is Unknown. An empty address yields nil.
func LookupGeo(addr string) *model.GeoHint {
	if addr == "" {
		return nil
	}
	if IsPrivateIP(addr) {
		return &model.GeoHint{Country: "Local Network", City: "Local"}
	}
	switch {
	case strings.HasPrefix(addr, "8.8."):
		return &model.GeoHint{
			Country:   "United States",
			City:      "Mountain View",
			Latitude:  coord(37.4056),
			Longitude: coord(-122.0775),
		}
	case strings.HasPrefix(addr, "1.1."):
		return &model.GeoHint{
			Country:   "Australia",
			City:      "Sydney",
			Latitude:  coord(-33.8688),
			Longitude: coord(151.2093),
		}
	}
	return &model.GeoHint{Country: "Unknown", City: "Unknown"}
}

func coord(v float64) *float64 { return &v }
