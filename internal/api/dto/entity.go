package dto

import "market-distance-service/internal/domain"

type EntityDistanceResponse struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Address  string   `json:"address"`
	Kind     string   `json:"kind"`
	Distance string   `json:"distance"`
	Miles    *float64 `json:"miles,omitempty"`
}

type ListEntitiesResponse struct {
	Scope string                   `json:"scope"`
	User  *domain.Coordinates      `json:"user"`
	Items []EntityDistanceResponse `json:"items"`
}
