// Package world holds the mutable state of one playthrough: resources,
// baronial relationships, regional stability, flags, history and active
// narrative chains. It is pure data plus invariant-preserving mutators;
// event selection and consequence processing live in pkg/engine.
package world

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrUnknownBaron and ErrUnknownRegion surface content defects: authored
// data referencing ids outside the closed sets. They fail loudly rather
// than no-op so bad content is caught in testing.
var (
	ErrUnknownBaron    = fmt.Errorf("unknown baron")
	ErrUnknownRegion   = fmt.Errorf("unknown region")
	ErrUnknownLocation = fmt.Errorf("unknown location")
)

// StartingBarons seeds the eight tracked barons with their standing toward
// the crown at the start of 1205.
var StartingBarons = map[string]int{
	"william_marshal":       70, // loyal but cautious
	"william_longespee":     75, // half-brother, very loyal
	"william_de_braose":     60, // starting to decline historically
	"geoffrey_fitzpeter":    70, // loyal justiciar
	"roger_de_lacy":         60, // northern lord, moderate
	"robert_de_vieuxpont":   60,
	"william_de_stuteville": 55,
	"hugh_de_neville":       65, // chief forester
}

// StartingRegions seeds regional stability at the start of 1205.
var StartingRegions = map[string]int{
	"southern_england": 75, // core domain, most stable
	"northern_england": 60,
	"welsh_marches":    55,
	"scotland_border":  60,
	"ireland":          55,
	"continental":      50, // just lost Normandy
}

// regionWeights bias the kingdom stability metric: the royal heartland
// counts double, the distant margins half.
var regionWeights = map[string]float64{
	"southern_england": 2.0,
	"northern_england": 1.0,
	"welsh_marches":    1.0,
	"scotland_border":  0.5,
	"ireland":          0.5,
	"continental":      1.0,
}

// KnownBaron reports whether id is one of the tracked barons.
func KnownBaron(id string) bool {
	_, ok := StartingBarons[id]
	return ok
}

// KnownRegion reports whether id is one of the tracked regions.
func KnownRegion(id string) bool {
	_, ok := StartingRegions[id]
	return ok
}

// DefaultHistoryCap bounds the event history to one year of daily entries.
const DefaultHistoryCap = 365

// TravelPlan is an in-progress journey.
type TravelPlan struct {
	Destination   string `json:"destination"`
	DaysRemaining int    `json:"days_remaining"`
}

// State is the complete mutable state of one playthrough. It is created
// once per new game, mutated in place through its methods, and restored
// wholesale on load.
type State struct {
	ID       uuid.UUID
	Day      int // day counter owned here; pkg/calendar maps it to a date
	Location string
	Travel   *TravelPlan

	Treasury  int // unbounded, negative values are meaningful
	Authority int // 0-100
	Military  int // 0-100
	Papal     int // -100 to 100

	Barons  map[string]int // closed set, each 0-100
	Regions map[string]int // closed set, each 0-100
	Flags   map[string]FlagValue

	TriggeredEvents map[string]bool // event ids that must never fire again
	ActiveChains    []*ChainState   // activation order, duplicates forbidden
	History         []EventRecord   // bounded FIFO

	DaysNegativeTreasury int
	HistoryCap           int
}

// NewState creates the state for a fresh playthrough on January 1, 1205,
// holding court at Winchester.
func NewState() *State {
	barons := make(map[string]int, len(StartingBarons))
	for id, v := range StartingBarons {
		barons[id] = v
	}
	regions := make(map[string]int, len(StartingRegions))
	for id, v := range StartingRegions {
		regions[id] = v
	}
	return &State{
		ID:        uuid.New(),
		Day:       0,
		Location:  "winchester",
		Treasury:  StartingTreasury,
		Authority: StartingAuthority,
		Military:  StartingMilitary,
		Papal:     StartingPapal,
		Barons:    barons,
		Regions:   regions,
		Flags: map[string]FlagValue{
			"invasion_launched":  BoolFlag(false),
			"invasion_success":   NullFlag(),
			"archbishop_elected": NullFlag(),
			"de_braose_fallen":   BoolFlag(false),
			"hostages_taken":     ListFlag(nil),
			"historical_path":    BoolFlag(true),
		},
		TriggeredEvents: make(map[string]bool),
		HistoryCap:      DefaultHistoryCap,
	}
}

// CurrentDay implements the evaluator's view of the state.
func (s *State) CurrentDay() int { return s.Day }

// CurrentLocation implements the evaluator's view of the state.
func (s *State) CurrentLocation() string { return s.Location }

// ResourceValue returns the current value of a named resource.
func (s *State) ResourceValue(name string) (int, bool) {
	switch Resource(name) {
	case ResourceTreasury:
		return s.Treasury, true
	case ResourceAuthority:
		return s.Authority, true
	case ResourceMilitary:
		return s.Military, true
	case ResourcePapal:
		return s.Papal, true
	}
	return 0, false
}

// Flag returns the stored value for a flag, if set.
func (s *State) Flag(name string) (FlagValue, bool) {
	v, ok := s.Flags[name]
	return v, ok
}

// SetFlag overwrites a flag. Last write wins; any value type is allowed.
func (s *State) SetFlag(name string, v FlagValue) FlagValue {
	old := s.Flags[name]
	if s.Flags == nil {
		s.Flags = make(map[string]FlagValue)
	}
	s.Flags[name] = v
	return old
}

// AdjustResource applies an additive delta with per-resource clamping.
// Treasury is never clamped; authority and military clamp to [0,100];
// papal relations clamp to [-100,100].
func (s *State) AdjustResource(r Resource, delta int) (old, now int, err error) {
	switch r {
	case ResourceTreasury:
		old = s.Treasury
		s.Treasury += delta
		return old, s.Treasury, nil
	case ResourceAuthority:
		old = s.Authority
		s.Authority = clamp(old+delta, 0, 100)
		return old, s.Authority, nil
	case ResourceMilitary:
		old = s.Military
		s.Military = clamp(old+delta, 0, 100)
		return old, s.Military, nil
	case ResourcePapal:
		old = s.Papal
		s.Papal = clamp(old+delta, -100, 100)
		return old, s.Papal, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrUnknownResource, r)
}

// AdjustBaron applies an additive delta to a baron relationship, clamped
// to [0,100]. Unknown ids are a content error.
func (s *State) AdjustBaron(id string, delta int) (old, now int, err error) {
	old, ok := s.Barons[id]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownBaron, id)
	}
	s.Barons[id] = clamp(old+delta, 0, 100)
	return old, s.Barons[id], nil
}

// AdjustRegion applies an additive delta to regional stability, clamped
// to [0,100]. Unknown ids are a content error.
func (s *State) AdjustRegion(id string, delta int) (old, now int, err error) {
	old, ok := s.Regions[id]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRegion, id)
	}
	s.Regions[id] = clamp(old+delta, 0, 100)
	return old, s.Regions[id], nil
}

// Triggered reports whether a triggered event has already been consumed
// this playthrough.
func (s *State) Triggered(id string) bool {
	return s.TriggeredEvents[id]
}

// MarkTriggered consumes a triggered event id. Once marked, the event can
// never fire again in this playthrough.
func (s *State) MarkTriggered(id string) {
	if s.TriggeredEvents == nil {
		s.TriggeredEvents = make(map[string]bool)
	}
	s.TriggeredEvents[id] = true
}

// StartChain activates a chain and appends it to the active list.
// Restarting a chain id that is still active is a content error.
func (s *State) StartChain(chainID string, steps []string) (*ChainState, error) {
	for _, c := range s.ActiveChains {
		if c.ChainID == chainID && c.Active {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateChain, chainID)
		}
	}
	chain := &ChainState{
		ChainID: chainID,
		Steps:   append([]string(nil), steps...),
		Cursor:  0,
		Active:  true,
	}
	s.ActiveChains = append(s.ActiveChains, chain)
	return chain, nil
}

// PruneCompletedChains drops completed chains from the active list.
// Pruning is optional; completed chains are inert either way.
func (s *State) PruneCompletedChains() {
	kept := s.ActiveChains[:0]
	for _, c := range s.ActiveChains {
		if !c.Complete() {
			kept = append(kept, c)
		}
	}
	s.ActiveChains = kept
}

// AppendHistory appends a record, evicting the oldest entries past the cap.
func (s *State) AppendHistory(rec EventRecord) {
	limit := s.HistoryCap
	if limit <= 0 {
		limit = DefaultHistoryCap
	}
	s.History = append(s.History, rec)
	if over := len(s.History) - limit; over > 0 {
		s.History = append([]EventRecord(nil), s.History[over:]...)
	}
}

// StartTravel begins a journey. Days must be positive; zero-day journeys
// move the king immediately.
func (s *State) StartTravel(destination string, days int) error {
	if !KnownLocation(destination) {
		return fmt.Errorf("%w: %q", ErrUnknownLocation, destination)
	}
	if days <= 0 {
		s.Location = destination
		s.Travel = nil
		return nil
	}
	s.Travel = &TravelPlan{Destination: destination, DaysRemaining: days}
	return nil
}

// AdvanceDay increments the day counter, tracks consecutive days of
// negative treasury, and resolves any travel countdown.
func (s *State) AdvanceDay() {
	s.Day++

	if s.Treasury < 0 {
		s.DaysNegativeTreasury++
	} else {
		s.DaysNegativeTreasury = 0
	}

	if s.Travel != nil {
		s.Travel.DaysRemaining--
		if s.Travel.DaysRemaining <= 0 {
			s.Location = s.Travel.Destination
			s.Travel = nil
		}
	}
}

// AverageLoyalty returns the mean baron relationship.
func (s *State) AverageLoyalty() float64 {
	if len(s.Barons) == 0 {
		return 0
	}
	sum := 0
	for _, v := range s.Barons {
		sum += v
	}
	return float64(sum) / float64(len(s.Barons))
}

// KingdomStability returns the weighted mean of regional stability.
func (s *State) KingdomStability() float64 {
	var total, weight float64
	for id, v := range s.Regions {
		w, ok := regionWeights[id]
		if !ok {
			w = 1.0
		}
		total += float64(v) * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return total / weight
}

// EndReason explains why a playthrough ended.
type EndReason string

const (
	EndBankruptcy      EndReason = "bankruptcy"
	EndCivilWar        EndReason = "civil_war"
	EndMassRebellion   EndReason = "mass_rebellion"
	EndKingdomCollapse EndReason = "kingdom_collapse"
)

// CheckTerminal reports whether the reign has ended and why.
// bankruptDays is the number of consecutive negative-treasury days
// tolerated before bankruptcy.
func (s *State) CheckTerminal(bankruptDays int) (bool, EndReason) {
	if s.Treasury < 0 && s.DaysNegativeTreasury > bankruptDays {
		return true, EndBankruptcy
	}
	if s.Authority < 10 {
		return true, EndCivilWar
	}
	if s.AverageLoyalty() < 15 {
		return true, EndMassRebellion
	}
	collapse := len(s.Regions) > 0
	for _, v := range s.Regions {
		if v >= 25 {
			collapse = false
			break
		}
	}
	if collapse {
		return true, EndKingdomCollapse
	}
	return false, ""
}
