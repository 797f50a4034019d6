package world

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Location is a place the king can hold court. Region ties a location to
// the regional stability map.
type Location struct {
	Name        string
	Kind        string // castle, palace, city, monastery, manor, port
	Region      string
	Description string
}

// Locations is the closed set of places King John visited in 1205.
var Locations = map[string]Location{
	"westminster": {"Westminster", "palace", "southern_england",
		"The seat of royal government and chancery, home to Westminster Palace and Abbey."},
	"winchester": {"Winchester", "castle", "southern_england",
		"Ancient capital of England, royal treasury, and major stronghold."},
	"windsor": {"Windsor", "castle", "southern_england",
		"Favored royal residence with extensive hunting grounds along the Thames."},
	"portsmouth": {"Portsmouth", "port", "southern_england",
		"Major naval base and embarkation point for continental campaigns."},
	"marlborough": {"Marlborough", "castle", "southern_england",
		"Important royal castle in Wiltshire, center of Savernake Forest."},
	"clarendon": {"Clarendon", "palace", "southern_england",
		"Royal hunting lodge and palace near Salisbury, a favorite residence."},
	"oxford": {"Oxford", "city", "southern_england",
		"Important town with royal castle, growing center of learning."},
	"canterbury": {"Canterbury", "city", "southern_england",
		"Seat of the Archbishop, England's premier religious center."},
	"dover": {"Dover", "castle", "southern_england",
		"Key fortress guarding the shortest crossing to France."},
	"york": {"York", "city", "northern_england",
		"Major northern city, seat of archbishop, strategic stronghold."},
	"nottingham": {"Nottingham", "castle", "northern_england",
		"Powerful Midlands fortress, gateway to the north."},
	"northampton": {"Northampton", "castle", "northern_england",
		"Royal castle on the road between London and the north."},
	"gloucester": {"Gloucester", "city", "welsh_marches",
		"Western city at the lowest crossing of the Severn."},
	"shrewsbury": {"Shrewsbury", "castle", "welsh_marches",
		"Border stronghold watching the Welsh princes."},
	"bristol": {"Bristol", "port", "welsh_marches",
		"Wealthy western port trading with Ireland and Gascony."},
}

// KnownLocation reports whether id names a location.
func KnownLocation(id string) bool {
	_, ok := Locations[id]
	return ok
}

// travelTimes holds days of travel between directly connected locations.
// Lookups check both directions.
var travelTimes = map[[2]string]int{
	{"westminster", "windsor"}:     1,
	{"westminster", "canterbury"}:  2,
	{"westminster", "dover"}:       2,
	{"westminster", "oxford"}:      2,
	{"westminster", "northampton"}: 2,
	{"westminster", "york"}:        5,
	{"winchester", "westminster"}:  2,
	{"winchester", "portsmouth"}:   1,
	{"winchester", "clarendon"}:    1,
	{"winchester", "marlborough"}:  1,
	{"windsor", "oxford"}:          1,
	{"marlborough", "clarendon"}:   1,
	{"marlborough", "oxford"}:      1,
	{"oxford", "northampton"}:      1,
	{"oxford", "gloucester"}:       2,
	{"northampton", "nottingham"}:  2,
	{"nottingham", "york"}:         2,
	{"gloucester", "bristol"}:      1,
	{"gloucester", "shrewsbury"}:   2,
	{"bristol", "winchester"}:      3,
	{"canterbury", "dover"}:        1,
}

// defaultTravelDays is the estimate for pairs with no charted route.
const defaultTravelDays = 3

// TravelDays returns the journey length in days between two locations.
// The same location returns 0; uncharted routes fall back to an estimate.
func TravelDays(from, to string) int {
	if from == to {
		return 0
	}
	if d, ok := travelTimes[[2]string{from, to}]; ok {
		return d
	}
	if d, ok := travelTimes[[2]string{to, from}]; ok {
		return d
	}
	return defaultTravelDays
}

var titleCaser = cases.Title(language.English)

// DisplayName formats an id like "welsh_marches" or "william_marshal" for
// presentation. Known locations use their proper name.
func DisplayName(id string) string {
	if loc, ok := Locations[id]; ok {
		return loc.Name
	}
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
