package domain

import "errors"

var (
	ErrAddressMissing          = errors.New("address missing")
	ErrGeocodeNotFound         = errors.New("geocode: no match")
	ErrRoadDistanceUnavailable = errors.New("road distance unavailable")
	ErrCacheCorrupt            = errors.New("distance cache corrupt")
)
