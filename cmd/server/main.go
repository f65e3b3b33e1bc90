package main

import (
	"context"
	"log"
	"market-distance-service/internal/api"
	"market-distance-service/internal/app"
	"market-distance-service/internal/config"
	"net/http"
	"time"
)

// main is the application entry point.
// It loads config, builds adapters behind ports via app.Build and starts the HTTP server.
func main() {
	cfg := config.Load()

	a, err := app.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer a.Close()

	router := api.NewRouter(api.Deps{
		Entities:           a.Entities,
		Orchestrator:       a.Orchestrator,
		Cache:              a.Cache,
		Coords:             a.Coords,
		Places:             a.Places,
		LocalRadiusMiles:   cfg.Distance.LocalRadiusMiles,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	// Timeouts are tuned for cold-cache runs (external API latency plus batch delays).
	log.Printf("Server listening addr=:%s provider=%s cache=%s", cfg.Server.Port, cfg.Provider.Name, cfg.Storage.CacheBackend)
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}
