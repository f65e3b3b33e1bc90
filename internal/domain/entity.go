package domain

import "strings"

type EntityKind string

const (
	KindMarket EntityKind = "market"
	KindVendor EntityKind = "vendor"
)

// ParseEntityKind accepts singular or plural forms ("market", "markets").
func ParseEntityKind(s string) (EntityKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "market", "markets":
		return KindMarket, true
	case "vendor", "vendors":
		return KindVendor, true
	}
	return "", false
}

// Entity is a market or vendor as seen by the distance layer.
// It is read-only here; storefront data lives elsewhere.
type Entity struct {
	ID      string
	Name    string
	Address string
	Kind    EntityKind
}

// CacheKey identifies the entity in the distance cache:
// "<name>-<address>", lowercased, with each whitespace run replaced by "-".
func (e Entity) CacheKey() string {
	raw := strings.ToLower(e.Name + "-" + e.Address)
	return strings.Join(strings.Fields(raw), "-")
}
