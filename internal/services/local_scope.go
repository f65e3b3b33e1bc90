package services

import (
	"market-distance-service/internal/domain"
	"sort"
)

// DefaultLocalRadiusMiles bounds the "local markets" view.
const DefaultLocalRadiusMiles = 50.0

// EntityDistance pairs an entity with its label and, when the label is numeric, miles.
type EntityDistance struct {
	Entity domain.Entity
	Label  string
	Miles  float64
	Known  bool
}

// AttachLabels joins entities to labels using key to find each entity's label.
// Entities without a label get "-- mi".
func AttachLabels(entities []domain.Entity, labels map[string]string, key func(domain.Entity) string) []EntityDistance {
	out := make([]EntityDistance, 0, len(entities))
	for _, e := range entities {
		label, ok := labels[key(e)]
		if !ok {
			label = domain.LabelUnknown
		}
		miles, known := domain.ParseMiles(label)
		out = append(out, EntityDistance{Entity: e, Label: label, Miles: miles, Known: known})
	}
	return out
}

// SortByDistance orders nearest first; unknown distances go last, then by name.
func SortByDistance(rows []EntityDistance) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Known != b.Known {
			return a.Known
		}
		if a.Known && a.Miles != b.Miles {
			return a.Miles < b.Miles
		}
		return a.Entity.Name < b.Entity.Name
	})
}

// WithinRadius keeps rows whose distance is known and at most radiusMiles.
func WithinRadius(rows []EntityDistance, radiusMiles float64) []EntityDistance {
	if radiusMiles <= 0 {
		radiusMiles = DefaultLocalRadiusMiles
	}
	out := make([]EntityDistance, 0, len(rows))
	for _, r := range rows {
		if r.Known && r.Miles <= radiusMiles {
			out = append(out, r)
		}
	}
	return out
}
