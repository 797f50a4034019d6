package world

import "fmt"

// Resource identifies one of the four scalar resources. Consequence specs
// name resources as data; this fixed enum keeps the dispatch exhaustive
// instead of relying on dynamic lookup.
type Resource string

const (
	ResourceTreasury  Resource = "treasury"
	ResourceAuthority Resource = "authority"
	ResourceMilitary  Resource = "military"
	ResourcePapal     Resource = "papal"
)

// Resources lists every known resource in a stable order.
var Resources = []Resource{ResourceTreasury, ResourceAuthority, ResourceMilitary, ResourcePapal}

// KnownResource reports whether name is a valid resource id.
func KnownResource(name string) bool {
	switch Resource(name) {
	case ResourceTreasury, ResourceAuthority, ResourceMilitary, ResourcePapal:
		return true
	}
	return false
}

// Starting values for January 1, 1205.
const (
	StartingTreasury  = 8000
	StartingAuthority = 65
	StartingMilitary  = 60
	StartingPapal     = 40
)

// ErrUnknownResource is returned when a consequence or requirement names
// a resource that does not exist. This is a content error.
var ErrUnknownResource = fmt.Errorf("unknown resource")

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
