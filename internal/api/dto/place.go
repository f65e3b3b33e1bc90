package dto

import "market-distance-service/internal/domain"

type PlaceResponse struct {
	PlaceID     string             `json:"place_id"`
	Name        string             `json:"name"`
	Address     string             `json:"address"`
	Rating      float64            `json:"rating"`
	RatingCount int                `json:"rating_count"`
	OpenNow     *bool              `json:"open_now,omitempty"`
	Location    domain.Coordinates `json:"location"`
}

type SearchPlacesResponse struct {
	Places []PlaceResponse `json:"places"`
}
