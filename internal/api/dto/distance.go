package dto

import "market-distance-service/internal/domain"

// DistanceRequest selects entities by inline list, by IDs, or by kind (in that order).
type DistanceRequest struct {
	Kind        string              `json:"kind"`
	IDs         []string            `json:"ids"`
	Entities    []EntityInput       `json:"entities"`
	User        *domain.Coordinates `json:"user"`
	UserAddress string              `json:"user_address"`
}

type EntityInput struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

type DistanceResponse struct {
	Distances map[string]string   `json:"distances"`
	User      *domain.Coordinates `json:"user"`
}
