package handlers

import (
	"log"
	"market-distance-service/internal/api/dto"
	"market-distance-service/internal/platform/obs"
	"market-distance-service/internal/ports"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type PlaceHandler struct {
	Searcher ports.PlaceSearcher
}

// Search proxies a free-text place search, biased toward lat/lng when given.
func (h *PlaceHandler) Search(c *gin.Context) {
	if h.Searcher == nil {
		writeError(c, http.StatusServiceUnavailable, "place search is not configured")
		return
	}

	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		writeError(c, http.StatusBadRequest, "q is required")
		return
	}

	bias, err := userFromQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	ctx := c.Request.Context()
	places, err := h.Searcher.SearchPlaces(ctx, q, bias)
	if err != nil {
		log.Printf("req_id=%s op=search_places err=%v", obs.RequestID(ctx), err)
		writeError(c, http.StatusBadGateway, "place search failed")
		return
	}

	out := dto.SearchPlacesResponse{Places: make([]dto.PlaceResponse, 0, len(places))}
	for _, p := range places {
		out.Places = append(out.Places, dto.PlaceResponse{
			PlaceID:     p.PlaceID,
			Name:        p.Name,
			Address:     p.Address,
			Rating:      p.Rating,
			RatingCount: p.RatingCount,
			OpenNow:     p.OpenNow,
			Location:    p.Location,
		})
	}

	c.JSON(http.StatusOK, out)
}
