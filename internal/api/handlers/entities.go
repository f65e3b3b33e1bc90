package handlers

import (
	"log"
	"market-distance-service/internal/api/dto"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/platform/obs"
	"market-distance-service/internal/ports"
	"market-distance-service/internal/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type EntityHandler struct {
	Repo             ports.EntityRepository
	Orchestrator     *services.DistanceOrchestrator
	Coords           *services.CoordinateResolver
	LocalRadiusMiles float64
}

func (h *EntityHandler) ListMarkets(c *gin.Context) { h.list(c, domain.KindMarket) }

func (h *EntityHandler) ListVendors(c *gin.Context) { h.list(c, domain.KindVendor) }

// list returns entities nearest first. scope=local keeps those within the local radius.
func (h *EntityHandler) list(c *gin.Context, kind domain.EntityKind) {
	ctx := c.Request.Context()

	user, err := userFromQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	if user == nil {
		user = resolveUserAddress(ctx, h.Coords, c.Query("address"))
	}

	scope := c.DefaultQuery("scope", "all")
	if scope != "all" && scope != "local" {
		writeError(c, http.StatusBadRequest, "scope must be local or all")
		return
	}

	entities, err := h.Repo.ListEntities(ctx, kind)
	if err != nil {
		log.Printf("req_id=%s op=list_%ss err=%v", obs.RequestID(ctx), kind, err)
		writeError(c, http.StatusInternalServerError, "failed to list "+string(kind)+"s")
		return
	}

	labels, err := h.Orchestrator.ComputeDistances(ctx, entities, user, nil)
	if err != nil {
		log.Printf("req_id=%s op=list_%ss partial=%d err=%v", obs.RequestID(ctx), kind, len(labels), err)
	}

	rows := services.AttachLabels(entities, labels, func(e domain.Entity) string {
		return h.Orchestrator.KeyFor(e, user)
	})
	services.SortByDistance(rows)
	if scope == "local" {
		rows = services.WithinRadius(rows, h.LocalRadiusMiles)
	}

	items := make([]dto.EntityDistanceResponse, 0, len(rows))
	for _, r := range rows {
		item := dto.EntityDistanceResponse{
			ID:       r.Entity.ID,
			Name:     r.Entity.Name,
			Address:  r.Entity.Address,
			Kind:     string(r.Entity.Kind),
			Distance: r.Label,
		}
		if r.Known {
			miles := r.Miles
			item.Miles = &miles
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, dto.ListEntitiesResponse{Scope: scope, User: user, Items: items})
}
