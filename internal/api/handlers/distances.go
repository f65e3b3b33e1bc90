package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"market-distance-service/internal/api/dto"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"market-distance-service/internal/ports"
	"market-distance-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type DistanceHandler struct {
	Entities     ports.EntityRepository
	Orchestrator *services.DistanceOrchestrator
	Cache        *services.DistanceCacheStore
	Coords       *services.CoordinateResolver
}

// Compute returns a distance label per requested entity. Distance failures show
// up as degraded labels, never as HTTP errors.
func (h *DistanceHandler) Compute(c *gin.Context) {
	var req dto.DistanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json body")
		return
	}

	ctx := c.Request.Context()

	entities, status, err := h.selectEntities(ctx, req)
	if err != nil {
		writeError(c, status, err.Error())
		return
	}

	user := req.User
	if user != nil && !user.Valid() {
		writeError(c, http.StatusBadRequest, "user lat/lng out of range")
		return
	}
	if user == nil {
		user = resolveUserAddress(ctx, h.Coords, req.UserAddress)
	}

	labels, err := h.Orchestrator.ComputeDistances(ctx, entities, user, nil)
	if err != nil {
		log.Printf("req_id=%s op=compute_distances partial=%d err=%v", obs.RequestID(ctx), len(labels), err)
	}

	c.JSON(http.StatusOK, dto.DistanceResponse{Distances: labels, User: user})
}

func (h *DistanceHandler) selectEntities(ctx context.Context, req dto.DistanceRequest) ([]domain.Entity, int, error) {
	kind := domain.KindMarket
	if req.Kind != "" {
		k, ok := domain.ParseEntityKind(req.Kind)
		if !ok {
			return nil, http.StatusBadRequest, fmt.Errorf("unknown kind %q", req.Kind)
		}
		kind = k
	}

	switch {
	case len(req.Entities) > 0:
		out := make([]domain.Entity, 0, len(req.Entities))
		for _, e := range req.Entities {
			out = append(out, domain.Entity{ID: e.ID, Name: e.Name, Address: e.Address, Kind: kind})
		}
		return out, http.StatusOK, nil

	case len(req.IDs) > 0:
		out, err := h.Entities.GetEntities(ctx, req.IDs)
		if err != nil {
			log.Printf("req_id=%s op=compute_distances err=%v", obs.RequestID(ctx), err)
			return nil, http.StatusInternalServerError, errors.New("failed to load entities")
		}
		return out, http.StatusOK, nil

	case req.Kind != "":
		out, err := h.Entities.ListEntities(ctx, kind)
		if err != nil {
			log.Printf("req_id=%s op=compute_distances err=%v", obs.RequestID(ctx), err)
			return nil, http.StatusInternalServerError, errors.New("failed to load entities")
		}
		return out, http.StatusOK, nil
	}

	return nil, http.StatusBadRequest, errors.New("one of entities, ids or kind is required")
}

// ClearCache drops every cached label so the next request recomputes them.
func (h *DistanceHandler) ClearCache(c *gin.Context) {
	if err := h.Cache.Clear(c.Request.Context()); err != nil {
		log.Printf("req_id=%s op=clear_distance_cache err=%v", obs.RequestID(c.Request.Context()), err)
		writeError(c, http.StatusInternalServerError, "failed to clear cache")
		return
	}
	c.Status(http.StatusNoContent)
}
