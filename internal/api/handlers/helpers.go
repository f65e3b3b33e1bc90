package handlers

import (
	"context"
	"errors"
	"fmt"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/services"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// userFromQuery reads the optional lat/lng query pair. Neither present means
// the user location is unknown.
func userFromQuery(c *gin.Context) (*domain.Coordinates, error) {
	latStr := strings.TrimSpace(c.Query("lat"))
	lngStr := strings.TrimSpace(c.Query("lng"))
	if latStr == "" && lngStr == "" {
		return nil, nil
	}
	if latStr == "" || lngStr == "" {
		return nil, errors.New("lat and lng must be given together")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q", latStr)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q", lngStr)
	}

	u := domain.Coordinates{Lat: lat, Lng: lng}
	if !u.Valid() {
		return nil, errors.New("lat/lng out of range")
	}
	return &u, nil
}

// resolveUserAddress geocodes a typed-in user location; failure leaves it unknown.
func resolveUserAddress(ctx context.Context, coords *services.CoordinateResolver, address string) *domain.Coordinates {
	if coords == nil || strings.TrimSpace(address) == "" {
		return nil
	}
	u, ok := coords.Resolve(ctx, address)
	if !ok {
		return nil
	}
	return &u
}
