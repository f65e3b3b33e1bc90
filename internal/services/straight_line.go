package services

import (
	"log"
	"market-distance-service/internal/domain"
	"strings"

	"github.com/jftuga/geodist"
	"github.com/umahmood/haversine"
)

// StraightLineFunc returns the as-the-crow-flies distance in miles.
type StraightLineFunc func(a, b domain.Coordinates) float64

// HaversineMiles is the great-circle distance between two points in miles.
func HaversineMiles(lat1, lng1, lat2, lng2 float64) float64 {
	mi, _ := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return mi
}

func haversineBetween(a, b domain.Coordinates) float64 {
	return HaversineMiles(a.Lat, a.Lng, b.Lat, b.Lng)
}

// VincentyMiles measures on the WGS84 ellipsoid. Vincenty's iteration does not
// converge for nearly antipodal points; those fall back to Haversine.
func VincentyMiles(a, b domain.Coordinates) float64 {
	mi, _, err := geodist.VincentyDistance(
		geodist.Coord{Lat: a.Lat, Lon: a.Lng},
		geodist.Coord{Lat: b.Lat, Lon: b.Lng},
	)
	if err != nil {
		log.Printf("op=straight_line.vincenty fallback=haversine err=%v", err)
		return haversineBetween(a, b)
	}
	return mi
}

// StraightLine picks the calculator named by method ("haversine" or "vincenty").
func StraightLine(method string) StraightLineFunc {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case "vincenty":
		return VincentyMiles
	case "", "haversine":
		return haversineBetween
	default:
		log.Printf("op=straight_line unknown method %q, using haversine", method)
		return haversineBetween
	}
}
