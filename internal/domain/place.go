package domain

// Place is a candidate returned by an external place search.
type Place struct {
	PlaceID     string
	Name        string
	Address     string
	Rating      float64
	RatingCount int
	OpenNow     *bool
	Location    Coordinates
}
