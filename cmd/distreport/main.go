package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"market-distance-service/internal/adapters/report"
	"market-distance-service/internal/app"
	"market-distance-service/internal/config"
	"market-distance-service/internal/domain"
	"market-distance-service/internal/services"
	"os"
	"os/signal"
	"time"
)

// distreport computes distances from one origin to every market (or vendor)
// and writes them to an Excel workbook, nearest first.
func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	origin domain.Coordinates
	kind   domain.EntityKind
	out    string
	local  bool
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("distreport", flag.ContinueOnError)
	lat := fs.Float64("lat", 0, "origin latitude (required)")
	lng := fs.Float64("lng", 0, "origin longitude (required)")
	kindFlag := fs.String("kind", "market", "entity kind: market or vendor")
	out := fs.String("out", "distances.xlsx", "output .xlsx path")
	local := fs.Bool("local", false, "only include entities within LOCAL_RADIUS_MILES")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["lat"] || !set["lng"] {
		return options{}, errors.New("both -lat and -lng are required")
	}

	kind, ok := domain.ParseEntityKind(*kindFlag)
	if !ok {
		return options{}, fmt.Errorf("unknown kind %q", *kindFlag)
	}
	origin := domain.Coordinates{Lat: *lat, Lng: *lng}
	if !origin.Valid() {
		return options{}, fmt.Errorf("origin %s out of range", origin)
	}

	return options{origin: origin, kind: kind, out: *out, local: *local}, nil
}

func run(args []string) (err error) {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	origin := opts.origin

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Load()
	a, err := app.Build(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	entities, err := a.Entities.ListEntities(ctx, opts.kind)
	if err != nil {
		return err
	}

	labels, err := a.Orchestrator.ComputeDistances(ctx, entities, &origin, func(p services.Progress) {
		if p.State == services.StateBatching {
			log.Printf("batch %d/%d done labels=%d", p.BatchesDone, p.BatchesTotal, len(p.Labels))
		}
	})
	if err != nil {
		log.Printf("distances incomplete: %v", err)
	}

	rows := services.AttachLabels(entities, labels, func(e domain.Entity) string {
		return a.Orchestrator.KeyFor(e, &origin)
	})
	services.SortByDistance(rows)
	if opts.local {
		rows = services.WithinRadius(rows, cfg.Distance.LocalRadiusMiles)
	}

	reportRows := make([]report.Row, 0, len(rows))
	for _, r := range rows {
		row := report.Row{
			ID:      r.Entity.ID,
			Name:    r.Entity.Name,
			Address: r.Entity.Address,
			Kind:    string(r.Entity.Kind),
			Label:   r.Label,
		}
		if r.Known {
			miles := r.Miles
			row.Miles = &miles
		}
		reportRows = append(reportRows, row)
	}

	if err := report.WriteDistances(opts.out, report.DefaultSheet, origin.String(), time.Now(), reportRows); err != nil {
		return err
	}
	log.Printf("wrote %d rows to %s", len(reportRows), opts.out)
	return nil
}
