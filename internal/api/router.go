package api

import (
	"market-distance-service/internal/api/handlers"
	"market-distance-service/internal/ports"
	"market-distance-service/internal/services"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP layer needs. Places may be nil.
type Deps struct {
	Entities     ports.EntityRepository
	Orchestrator *services.DistanceOrchestrator
	Cache        *services.DistanceCacheStore
	Coords       *services.CoordinateResolver
	Places       ports.PlaceSearcher

	LocalRadiusMiles   float64
	CORSAllowedOrigins []string
}

// NewRouter wires HTTP handlers with their dependencies and returns the engine.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) *gin.Engine {
	engine := gin.New()

	corsConfig := cors.DefaultConfig()
	if origins := trimOrigins(d.CORSAllowedOrigins); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddExposeHeaders(requestIDHeader)

	engine.Use(gin.Recovery(), requestIDMiddleware(), loggingMiddleware(), cors.New(corsConfig))

	distHandler := &handlers.DistanceHandler{
		Entities:     d.Entities,
		Orchestrator: d.Orchestrator,
		Cache:        d.Cache,
		Coords:       d.Coords,
	}
	entityHandler := &handlers.EntityHandler{
		Repo:             d.Entities,
		Orchestrator:     d.Orchestrator,
		Coords:           d.Coords,
		LocalRadiusMiles: d.LocalRadiusMiles,
	}
	placeHandler := &handlers.PlaceHandler{Searcher: d.Places}

	engine.GET("/health", handlers.Health)

	v1 := engine.Group("/v1")
	{
		v1.POST("/distances", distHandler.Compute)
		v1.DELETE("/distances/cache", distHandler.ClearCache)

		v1.GET("/markets", entityHandler.ListMarkets)
		v1.GET("/vendors", entityHandler.ListVendors)

		v1.GET("/places/search", placeHandler.Search)
	}

	return engine
}

// cors.New panics on origins with stray whitespace.
func trimOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
