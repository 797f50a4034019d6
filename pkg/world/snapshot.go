package world

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// SnapshotVersion is the current serialized-state version. FromSnapshot
// rejects anything else; migration is the save collaborator's problem.
const SnapshotVersion = "1.0"

// ErrBadSnapshot is returned when a snapshot cannot reconstruct a valid
// State. The call fails atomically; no partial recovery is attempted.
var ErrBadSnapshot = fmt.Errorf("invalid snapshot")

// Snapshot is the plain, versioned serializable form of a State. It is
// the only shape the engine exposes to persistence collaborators; file
// formats and save slots live outside this package.
type Snapshot struct {
	Version  string      `json:"version"`
	ID       uuid.UUID   `json:"id"`
	Day      int         `json:"day"`
	Location string      `json:"location"`
	Travel   *TravelPlan `json:"travel,omitempty"`

	Treasury  int `json:"treasury"`
	Authority int `json:"authority"`
	Military  int `json:"military"`
	Papal     int `json:"papal"`

	Barons  map[string]int       `json:"barons"`
	Regions map[string]int       `json:"regions"`
	Flags   map[string]FlagValue `json:"flags"`

	TriggeredEvents []string      `json:"triggered_events,omitempty"`
	ActiveChains    []ChainState  `json:"active_chains,omitempty"`
	History         []EventRecord `json:"history,omitempty"`

	DaysNegativeTreasury int `json:"days_negative_treasury"`
	HistoryCap           int `json:"history_cap"`
}

// Snapshot converts the state into its serializable form. Triggered event
// ids are emitted sorted so identical states produce identical snapshots.
func (s *State) Snapshot() *Snapshot {
	sn := &Snapshot{
		Version:              SnapshotVersion,
		ID:                   s.ID,
		Day:                  s.Day,
		Location:             s.Location,
		Treasury:             s.Treasury,
		Authority:            s.Authority,
		Military:             s.Military,
		Papal:                s.Papal,
		Barons:               copyIntMap(s.Barons),
		Regions:              copyIntMap(s.Regions),
		Flags:                copyFlagMap(s.Flags),
		DaysNegativeTreasury: s.DaysNegativeTreasury,
		HistoryCap:           s.HistoryCap,
	}
	if s.Travel != nil {
		t := *s.Travel
		sn.Travel = &t
	}
	if len(s.TriggeredEvents) > 0 {
		sn.TriggeredEvents = sortedKeys(s.TriggeredEvents)
	}
	for _, c := range s.ActiveChains {
		cc := *c
		cc.Steps = append([]string(nil), c.Steps...)
		sn.ActiveChains = append(sn.ActiveChains, cc)
	}
	if len(s.History) > 0 {
		sn.History = append([]EventRecord(nil), s.History...)
	}
	return sn
}

// FromSnapshot reconstructs a State. The snapshot either fully
// reconstructs a valid state or the call fails; nothing is partially
// applied.
func FromSnapshot(sn *Snapshot) (*State, error) {
	if sn == nil {
		return nil, fmt.Errorf("%w: nil", ErrBadSnapshot)
	}
	if sn.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrBadSnapshot, sn.Version)
	}
	if sn.Day < 0 {
		return nil, fmt.Errorf("%w: negative day %d", ErrBadSnapshot, sn.Day)
	}
	if !KnownLocation(sn.Location) {
		return nil, fmt.Errorf("%w: unknown location %q", ErrBadSnapshot, sn.Location)
	}
	if sn.Barons == nil || sn.Regions == nil || sn.Flags == nil {
		return nil, fmt.Errorf("%w: missing baron, region or flag map", ErrBadSnapshot)
	}
	for id := range sn.Barons {
		if !KnownBaron(id) {
			return nil, fmt.Errorf("%w: unknown baron %q", ErrBadSnapshot, id)
		}
	}
	for id := range sn.Regions {
		if !KnownRegion(id) {
			return nil, fmt.Errorf("%w: unknown region %q", ErrBadSnapshot, id)
		}
	}
	seen := make(map[string]bool, len(sn.ActiveChains))
	for _, c := range sn.ActiveChains {
		if c.Cursor < 0 || c.Cursor > len(c.Steps) {
			return nil, fmt.Errorf("%w: chain %q cursor %d out of range", ErrBadSnapshot, c.ChainID, c.Cursor)
		}
		if c.Active && seen[c.ChainID] {
			return nil, fmt.Errorf("%w: duplicate active chain %q", ErrBadSnapshot, c.ChainID)
		}
		if c.Active {
			seen[c.ChainID] = true
		}
	}

	st := &State{
		ID:                   sn.ID,
		Day:                  sn.Day,
		Location:             sn.Location,
		Treasury:             sn.Treasury,
		Authority:            sn.Authority,
		Military:             sn.Military,
		Papal:                sn.Papal,
		Barons:               copyIntMap(sn.Barons),
		Regions:              copyIntMap(sn.Regions),
		Flags:                copyFlagMap(sn.Flags),
		TriggeredEvents:      make(map[string]bool, len(sn.TriggeredEvents)),
		DaysNegativeTreasury: sn.DaysNegativeTreasury,
		HistoryCap:           sn.HistoryCap,
	}
	if sn.Travel != nil {
		t := *sn.Travel
		st.Travel = &t
	}
	for _, id := range sn.TriggeredEvents {
		st.TriggeredEvents[id] = true
	}
	for _, c := range sn.ActiveChains {
		cc := c
		cc.Steps = append([]string(nil), c.Steps...)
		st.ActiveChains = append(st.ActiveChains, &cc)
	}
	if len(sn.History) > 0 {
		st.History = append([]EventRecord(nil), sn.History...)
	}
	return st, nil
}

func copyIntMap(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFlagMap(m map[string]FlagValue) map[string]FlagValue {
	if m == nil {
		return nil
	}
	out := make(map[string]FlagValue, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
